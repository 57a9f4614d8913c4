package epidemic

import (
	"math/rand/v2"
	"testing"

	"github.com/nvandessel/sirsweep/internal/graph"
)

// newRand returns a deterministic random source for tests.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// ringLattice builds a ring of n nodes joined to their k/2 nearest neighbors on each side.
func ringLattice(t *testing.T, n, k int) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder(n)
	for j := 1; j <= k/2; j++ {
		for u := 0; u < n; u++ {
			if _, err := b.AddEdge(u, (u+j)%n); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}
	}
	return b.Build()
}

// fromEdges builds a graph from an edge list and fails the test on error.
func fromEdges(t *testing.T, n int, edges [][2]int) *graph.Graph {
	t.Helper()
	g, err := graph.FromEdges(n, edges)
	if err != nil {
		t.Fatalf("FromEdges: %v", err)
	}
	return g
}

// contains reports whether xs contains x.
func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
