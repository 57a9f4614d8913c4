package graph

import (
	"math"
	"testing"
)

// mustGraph builds a graph from an edge list and fails the test on error.
func mustGraph(t *testing.T, n int, edges [][2]int) *Graph {
	t.Helper()
	g, err := FromEdges(n, edges)
	if err != nil {
		t.Fatalf("FromEdges: %v", err)
	}
	return g
}

func TestBuilder_IgnoresSelfLoopsAndDuplicates(t *testing.T) {
	b := NewBuilder(3)
	for _, e := range [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, 2}} {
		if _, err := b.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d,%d): %v", e[0], e[1], err)
		}
	}
	g := b.Build()
	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
	if g.Degree(1) != 2 {
		t.Errorf("expected degree 2 for node 1, got %d", g.Degree(1))
	}
}

func TestBuilder_OutOfRange(t *testing.T) {
	b := NewBuilder(2)
	if _, err := b.AddEdge(0, 5); err == nil {
		t.Error("expected error for out-of-range edge")
	}
}

func TestBuilder_RemoveEdge(t *testing.T) {
	b := NewBuilder(3)
	b.AddEdge(0, 1)
	if !b.RemoveEdge(1, 0) {
		t.Fatal("expected RemoveEdge to report removal")
	}
	if b.HasEdge(0, 1) {
		t.Error("edge still present after removal")
	}
	if b.RemoveEdge(0, 1) {
		t.Error("second removal should report false")
	}
}

func TestNeighbors_Sorted(t *testing.T) {
	g := mustGraph(t, 5, [][2]int{{0, 4}, {0, 2}, {0, 3}, {0, 1}})
	got := g.Neighbors(0)
	want := []int{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Neighbors(0) = %v, want %v", got, want)
		}
	}
}

func TestEdges_RoundTrip(t *testing.T) {
	in := [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}}
	g := mustGraph(t, 4, in)
	g2 := mustGraph(t, 4, g.Edges())
	if g2.EdgeCount() != g.EdgeCount() {
		t.Errorf("edge count mismatch: %d vs %d", g2.EdgeCount(), g.EdgeCount())
	}
	for u := 0; u < 4; u++ {
		if g.Degree(u) != g2.Degree(u) {
			t.Errorf("degree mismatch at %d", u)
		}
	}
}

func TestClustering(t *testing.T) {
	// Triangle 0-1-2 with a pendant 3 attached to 0.
	g := mustGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {0, 2}, {0, 3}})
	cc := g.Clustering()

	tests := []struct {
		node int
		want float64
	}{
		{0, 1.0 / 3.0},
		{1, 1.0},
		{2, 1.0},
		{3, 0},
	}
	for _, tt := range tests {
		if math.Abs(cc[tt.node]-tt.want) > 1e-12 {
			t.Errorf("Clustering()[%d] = %f, want %f", tt.node, cc[tt.node], tt.want)
		}
	}
}

func TestClustering_RingLattice(t *testing.T) {
	// Ring with k=4: every node has clustering 0.5.
	n := 12
	b := NewBuilder(n)
	for u := 0; u < n; u++ {
		b.AddEdge(u, (u+1)%n)
		b.AddEdge(u, (u+2)%n)
	}
	cc := b.Build().Clustering()
	for u, c := range cc {
		if math.Abs(c-0.5) > 1e-12 {
			t.Errorf("node %d: clustering %f, want 0.5", u, c)
		}
	}
}

func TestConnected(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
		want  bool
	}{
		{"path", 3, [][2]int{{0, 1}, {1, 2}}, true},
		{"two components", 4, [][2]int{{0, 1}, {2, 3}}, false},
		{"single node", 1, nil, true},
		{"empty", 0, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t, tt.n, tt.edges)
			if got := g.Connected(); got != tt.want {
				t.Errorf("Connected() = %v, want %v", got, tt.want)
			}
		})
	}
}
