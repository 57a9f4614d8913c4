package epidemic

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/nvandessel/sirsweep/internal/graph"
)

// ErrInvalidVaccinationCount is returned when a vaccination count cannot be
// reduced to a valid node subset.
var ErrInvalidVaccinationCount = errors.New("invalid vaccination count")

// ErrUnknownStrategy is returned for a strategy name outside the closed set.
var ErrUnknownStrategy = errors.New("unknown vaccination strategy")

// Strategy identifies a vaccination policy. The string value is the stable
// name stored in result keys.
type Strategy string

const (
	StrategyUniform           Strategy = "arbitrary"
	StrategyHighestDegree     Strategy = "highest_degree"
	StrategyHighestClustering Strategy = "highest_CC"
	StrategyLowestClustering  Strategy = "lowest_CC"
)

// selectFunc picks count nodes to vaccinate. count is already adjusted to
// lie in [1, N-1].
type selectFunc func(g *graph.Graph, count int, rng *rand.Rand) (vaccinated []int, seed int)

var strategyTable = map[Strategy]selectFunc{
	StrategyUniform:           selectUniform,
	StrategyHighestDegree:     selectHighestDegree,
	StrategyHighestClustering: selectHighestClustering,
	StrategyLowestClustering:  selectLowestClustering,
}

// Strategies returns every strategy in canonical order.
func Strategies() []Strategy {
	return []Strategy{
		StrategyUniform,
		StrategyHighestDegree,
		StrategyHighestClustering,
		StrategyLowestClustering,
	}
}

// ParseStrategy maps a name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	if !s.Valid() {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
	}
	return s, nil
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	_, ok := strategyTable[s]
	return ok
}

func (s Strategy) String() string {
	return string(s)
}

// Select chooses the vaccinated nodes and the seed infection for g.
//
// A count equal to the node count is reduced by one so that a seed always
// exists. A count of zero vaccinates nobody and draws the seed uniformly from
// the whole graph. The seed is never a member of the vaccinated set.
func (s Strategy) Select(g *graph.Graph, count int, rng *rand.Rand) ([]int, int, error) {
	fn, ok := strategyTable[s]
	if !ok {
		return nil, 0, fmt.Errorf("%q: %w", string(s), ErrUnknownStrategy)
	}
	n := g.Order()
	if n == 0 {
		return nil, 0, fmt.Errorf("empty graph: %w", ErrInvalidVaccinationCount)
	}
	if count < 0 || count > n {
		return nil, 0, fmt.Errorf("count %d for %d nodes: %w", count, n, ErrInvalidVaccinationCount)
	}
	if count == n {
		count--
	}
	if count == 0 {
		return []int{}, rng.IntN(n), nil
	}
	vaccinated, seed := fn(g, count, rng)
	return vaccinated, seed, nil
}

// EffectiveCount returns the vaccination count Select actually applies to a
// graph with n nodes.
func EffectiveCount(count, n int) int {
	if count == n && n > 0 {
		return n - 1
	}
	return count
}

func selectUniform(g *graph.Graph, count int, rng *rand.Rand) ([]int, int) {
	n := g.Order()
	// Partial Fisher-Yates: the first count+1 slots are a uniform sample
	// without replacement.
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i <= count; i++ {
		j := i + rng.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	vaccinated := make([]int, count)
	copy(vaccinated, perm[:count])
	return vaccinated, perm[count]
}

func selectHighestDegree(g *graph.Graph, count int, rng *rand.Rand) ([]int, int) {
	order := rankDescending(g.Order(), func(u int) float64 { return float64(g.Degree(u)) })
	return splitHead(order, count, rng)
}

func selectHighestClustering(g *graph.Graph, count int, rng *rand.Rand) ([]int, int) {
	cc := g.Clustering()
	order := rankDescending(g.Order(), func(u int) float64 { return cc[u] })
	return splitHead(order, count, rng)
}

func selectLowestClustering(g *graph.Graph, count int, rng *rand.Rand) ([]int, int) {
	cc := g.Clustering()
	order := rankDescending(g.Order(), func(u int) float64 { return cc[u] })
	return splitTail(order, count, rng)
}

// rankDescending returns node IDs sorted by score descending, ties broken by
// ascending node ID.
func rankDescending(n int, score func(u int) float64) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		sa, sb := score(a), score(b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})
	return order
}

// splitHead vaccinates the first count ranked nodes and draws the seed from the rest.
func splitHead(order []int, count int, rng *rand.Rand) ([]int, int) {
	vaccinated := make([]int, count)
	copy(vaccinated, order[:count])
	rest := order[count:]
	return vaccinated, rest[rng.IntN(len(rest))]
}

// splitTail vaccinates the last count ranked nodes and draws the seed from the rest.
func splitTail(order []int, count int, rng *rand.Rand) ([]int, int) {
	cut := len(order) - count
	vaccinated := make([]int, count)
	copy(vaccinated, order[cut:])
	rest := order[:cut]
	return vaccinated, rest[rng.IntN(len(rest))]
}
