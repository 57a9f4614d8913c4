package epidemic

import (
	"errors"
	"slices"
	"testing"
)

func TestSelect_FullCountReducedByOne(t *testing.T) {
	g := ringLattice(t, 20, 4)
	for _, s := range Strategies() {
		t.Run(string(s), func(t *testing.T) {
			vaccinated, seed, err := s.Select(g, 20, newRand(1))
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if len(vaccinated) != 19 {
				t.Errorf("expected 19 vaccinated, got %d", len(vaccinated))
			}
			if contains(vaccinated, seed) {
				t.Errorf("seed %d is vaccinated", seed)
			}
		})
	}
}

func TestSelect_ZeroCount(t *testing.T) {
	g := ringLattice(t, 20, 4)
	for _, s := range Strategies() {
		t.Run(string(s), func(t *testing.T) {
			vaccinated, seed, err := s.Select(g, 0, newRand(2))
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if len(vaccinated) != 0 {
				t.Errorf("expected no vaccinated nodes, got %v", vaccinated)
			}
			if seed < 0 || seed >= g.Order() {
				t.Errorf("seed %d out of range", seed)
			}
		})
	}
}

func TestSelect_SizesAndDisjointness(t *testing.T) {
	g := ringLattice(t, 50, 4)
	for _, s := range Strategies() {
		for _, count := range []int{1, 7, 25, 49} {
			vaccinated, seed, err := s.Select(g, count, newRand(uint64(count)))
			if err != nil {
				t.Fatalf("%s count=%d: %v", s, count, err)
			}
			if len(vaccinated) != count {
				t.Errorf("%s count=%d: got %d vaccinated", s, count, len(vaccinated))
			}
			if contains(vaccinated, seed) {
				t.Errorf("%s count=%d: seed %d vaccinated", s, count, seed)
			}
			sorted := slices.Clone(vaccinated)
			slices.Sort(sorted)
			if len(slices.Compact(sorted)) != count {
				t.Errorf("%s count=%d: duplicate vaccinated nodes", s, count)
			}
		}
	}
}

func TestSelect_InvalidCount(t *testing.T) {
	g := ringLattice(t, 10, 2)
	for _, count := range []int{-1, 11} {
		_, _, err := StrategyUniform.Select(g, count, newRand(1))
		if !errors.Is(err, ErrInvalidVaccinationCount) {
			t.Errorf("count=%d: expected ErrInvalidVaccinationCount, got %v", count, err)
		}
	}
}

func TestSelect_UnknownStrategy(t *testing.T) {
	g := ringLattice(t, 10, 2)
	_, _, err := Strategy("random_walk").Select(g, 1, newRand(1))
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestSelect_HighestDegree(t *testing.T) {
	// Star centred on 2 plus a 0-1 edge: degrees 2:4, 0:2, 1:2, others 1.
	g := fromEdges(t, 6, [][2]int{{2, 0}, {2, 1}, {2, 3}, {2, 4}, {0, 1}, {4, 5}})
	vaccinated, seed, err := StrategyHighestDegree.Select(g, 3, newRand(3))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	// Ties between degree-2 nodes 0, 1 and 4 break by node ID.
	want := []int{2, 0, 1}
	if !slices.Equal(vaccinated, want) {
		t.Errorf("vaccinated = %v, want %v", vaccinated, want)
	}
	if !contains([]int{3, 4, 5}, seed) {
		t.Errorf("seed %d not drawn from the remainder", seed)
	}
}

func TestSelect_Clustering(t *testing.T) {
	// Triangle 0-1-2 with pendant 3 on 0: CC = {0: 1/3, 1: 1, 2: 1, 3: 0}.
	g := fromEdges(t, 4, [][2]int{{0, 1}, {1, 2}, {0, 2}, {0, 3}})

	high, seed, err := StrategyHighestClustering.Select(g, 2, newRand(4))
	if err != nil {
		t.Fatalf("highest: %v", err)
	}
	if !slices.Equal(high, []int{1, 2}) {
		t.Errorf("highest_CC vaccinated = %v, want [1 2]", high)
	}
	if seed != 0 && seed != 3 {
		t.Errorf("highest_CC seed %d not in remainder", seed)
	}

	low, seed, err := StrategyLowestClustering.Select(g, 1, newRand(5))
	if err != nil {
		t.Fatalf("lowest: %v", err)
	}
	if !slices.Equal(low, []int{3}) {
		t.Errorf("lowest_CC vaccinated = %v, want [3]", low)
	}
	if seed == 3 {
		t.Error("lowest_CC seed is vaccinated")
	}
}

func TestSelect_UniformCoversAllNodes(t *testing.T) {
	g := ringLattice(t, 8, 2)
	rng := newRand(6)
	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		_, seed, err := StrategyUniform.Select(g, 3, rng)
		if err != nil {
			t.Fatal(err)
		}
		seen[seed] = true
	}
	if len(seen) != 8 {
		t.Errorf("expected every node to be drawn as seed at some point, saw %d", len(seen))
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseStrategy("highest_cc"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected case-sensitive rejection, got %v", err)
	}
}

func TestEffectiveCount(t *testing.T) {
	tests := []struct{ count, n, want int }{
		{10, 10, 9},
		{0, 10, 0},
		{5, 10, 5},
	}
	for _, tt := range tests {
		if got := EffectiveCount(tt.count, tt.n); got != tt.want {
			t.Errorf("EffectiveCount(%d, %d) = %d, want %d", tt.count, tt.n, got, tt.want)
		}
	}
}
