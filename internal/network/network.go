// Package network generates the small-world contact networks that make up the
// network library and defines the fixed rewiring-probability ladder the
// library is keyed by.
package network

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/nvandessel/sirsweep/internal/graph"
)

// Library layout constants. A library holds Batches batches of BatchSize
// graphs for every point of the ladder.
const (
	// Nodes is the number of nodes in every library graph.
	Nodes = 10000

	// Degree is the ring-lattice base degree K before rewiring.
	Degree = 4

	// BatchSize is the number of graphs per batch file.
	BatchSize = 256

	// Batches is the number of batches per ladder point.
	Batches = 32

	// LadderSize is the number of rewiring probabilities in the ladder.
	LadderSize = 21

	// LibrarySeed is the seed the reference library was generated with.
	LibrarySeed = 13331124
)

// ErrNotInLadder is returned when a rewiring probability is not one of the
// ladder values.
var ErrNotInLadder = errors.New("rewiring probability not in ladder")

// ladder holds the correctly rounded values of 10^(-2+0.1i) for i in
// [0, 20]. Result keys compare these bit for bit; math.Pow is off by one ulp
// at several points, so they are not computed.
var ladder = []float64{
	0.01,
	0.012589254117941675,
	0.015848931924611134,
	0.0199526231496888,
	0.025118864315095794,
	0.03162277660168379,
	0.039810717055349734,
	0.05011872336272725,
	0.06309573444801933,
	0.07943282347242814,
	0.1,
	0.12589254117941676,
	0.15848931924611143,
	0.19952623149688797,
	0.25118864315095807,
	0.31622776601683794,
	0.3981071705534973,
	0.5011872336272725,
	0.6309573444801934,
	0.7943282347242817,
	1.0,
}

// Ladder returns a copy of the rewiring-probability ladder.
func Ladder() []float64 {
	out := make([]float64, len(ladder))
	copy(out, ladder)
	return out
}

// ProbabilityAt returns the ladder value at index i.
func ProbabilityAt(i int) (float64, error) {
	if i < 0 || i >= len(ladder) {
		return 0, fmt.Errorf("ladder index %d out of range [0,%d): %w", i, len(ladder), ErrNotInLadder)
	}
	return ladder[i], nil
}

// ResolveIndex returns the ladder index of p. Matching is exact; a value that
// is merely close to a ladder point is rejected.
func ResolveIndex(p float64) (int, error) {
	for i, v := range ladder {
		if v == p {
			return i, nil
		}
	}
	return 0, fmt.Errorf("p=%v: %w", p, ErrNotInLadder)
}

// WattsStrogatz builds a ring lattice of n nodes, each joined to its k/2
// nearest neighbors on either side, then rewires every lattice edge (u, u+j)
// with probability p to (u, w) for a uniformly drawn w that is neither u nor
// already adjacent to u.
func WattsStrogatz(n, k int, p float64, rng *rand.Rand) (*graph.Graph, error) {
	if n <= 0 {
		return nil, fmt.Errorf("watts-strogatz: n must be positive, got %d", n)
	}
	if k < 0 || k >= n {
		return nil, fmt.Errorf("watts-strogatz: k must be in [0,%d), got %d", n, k)
	}
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("watts-strogatz: p must be in [0,1], got %v", p)
	}

	b := graph.NewBuilder(n)
	half := k / 2
	for j := 1; j <= half; j++ {
		for u := 0; u < n; u++ {
			if _, err := b.AddEdge(u, (u+j)%n); err != nil {
				return nil, err
			}
		}
	}

	for j := 1; j <= half; j++ {
		for u := 0; u < n; u++ {
			if rng.Float64() >= p {
				continue
			}
			v := (u + j) % n
			w := rng.IntN(n)
			saturated := false
			for w == u || b.HasEdge(u, w) {
				if b.Degree(u) >= n-1 {
					saturated = true
					break
				}
				w = rng.IntN(n)
			}
			if saturated {
				continue
			}
			b.RemoveEdge(u, v)
			if _, err := b.AddEdge(u, w); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}

// ConnectedWattsStrogatz draws Watts–Strogatz graphs until one is connected,
// giving up after tries attempts.
func ConnectedWattsStrogatz(n, k int, p float64, tries int, rng *rand.Rand) (*graph.Graph, error) {
	if tries <= 0 {
		return nil, fmt.Errorf("connected watts-strogatz: tries must be positive, got %d", tries)
	}
	for attempt := 0; attempt < tries; attempt++ {
		g, err := WattsStrogatz(n, k, p, rng)
		if err != nil {
			return nil, err
		}
		if g.Connected() {
			return g, nil
		}
	}
	return nil, fmt.Errorf("connected watts-strogatz: no connected graph after %d tries (n=%d k=%d p=%v)", tries, n, k, p)
}

// StreamRand returns the random source for the (pIndex, batch) stream of
// seed. Streams are independent of one another, so work split by
// (pIndex, batch) is reproducible regardless of scheduling order.
func StreamRand(seed uint64, pIndex, batch int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(pIndex)<<32|uint64(uint32(batch))))
}
