package results

import (
	"testing"

	"github.com/nvandessel/sirsweep/internal/epidemic"
)

func key(rho float64) ParamSet {
	return ParamSet{P: 0.01, Beta: 0.45, Gamma: 1, Rho: rho, Chi: 0.004, Strategy: epidemic.StrategyUniform, Mutation: true}
}

// traj builds a minimal one-step trajectory tagged by its recovered count so
// tests can tell runs apart.
func traj(tag int) epidemic.Trajectory {
	return epidemic.Trajectory{T: []int{0}, S: []int{10 - tag}, I: []int{0}, R: []int{tag}}
}

func tags(trs []epidemic.Trajectory) []int {
	out := make([]int, len(trs))
	for i, tr := range trs {
		out[i] = tr.R[0]
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResults_AppendOrder(t *testing.T) {
	r := New()
	r.Append(key(0.2), traj(1))
	r.Append(key(0.1), traj(2))
	r.Append(key(0.2), traj(3))

	keys := r.Keys()
	if len(keys) != 2 || keys[0] != key(0.2) || keys[1] != key(0.1) {
		t.Fatalf("keys not in first-insertion order: %v", keys)
	}
	if got := tags(r.Get(key(0.2))); !equalInts(got, []int{1, 3}) {
		t.Errorf("runs under first key = %v, want [1 3]", got)
	}
	if r.Len() != 2 || r.Runs() != 3 {
		t.Errorf("Len=%d Runs=%d, want 2 and 3", r.Len(), r.Runs())
	}
	if r.Get(key(0.9)) != nil {
		t.Error("expected nil for absent key")
	}
}

func TestResults_KeysReturnsCopy(t *testing.T) {
	r := New()
	r.Append(key(0), traj(0))
	keys := r.Keys()
	keys[0] = key(0.5)
	if r.Keys()[0] != key(0) {
		t.Error("Keys() exposed internal slice")
	}
}

func TestMerge_DisjointKeys(t *testing.T) {
	a, b := New(), New()
	a.Append(key(0.1), traj(1))
	b.Append(key(0.2), traj(2))

	m := Merge(a, b)
	if m.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", m.Len())
	}
	if got := tags(m.Get(key(0.1))); !equalInts(got, []int{1}) {
		t.Errorf("A = %v", got)
	}
	if got := tags(m.Get(key(0.2))); !equalInts(got, []int{2}) {
		t.Errorf("B = %v", got)
	}
}

func TestMerge_SharedKeyConcatenates(t *testing.T) {
	a, b := New(), New()
	a.Append(key(0.1), traj(1))
	b.Append(key(0.1), traj(2))

	m := Merge(a, b)
	if got := tags(m.Get(key(0.1))); !equalInts(got, []int{1, 2}) {
		t.Errorf("merged runs = %v, want [1 2]", got)
	}
	if a.Runs() != 1 || b.Runs() != 1 {
		t.Error("Merge modified its inputs")
	}
}

func TestMerge_Empty(t *testing.T) {
	if m := Merge(); m.Len() != 0 || m.Runs() != 0 {
		t.Errorf("Merge() = %d keys, %d runs", m.Len(), m.Runs())
	}
	a := New()
	a.Append(key(0), traj(4))
	m := Merge(nil, a, New())
	if m.Runs() != 1 {
		t.Errorf("expected nil and empty inputs to be skipped, got %d runs", m.Runs())
	}
}

func TestMerge_RunCountIsSum(t *testing.T) {
	parts := make([]*Results, 4)
	total := 0
	for i := range parts {
		parts[i] = New()
		for j := 0; j <= i; j++ {
			parts[i].Append(key(float64(j)/10), traj(j))
			total++
		}
	}
	if got := Merge(parts...).Runs(); got != total {
		t.Errorf("Runs() = %d, want %d", got, total)
	}
}

func TestParamSet_String(t *testing.T) {
	got := key(0.3).String()
	want := "(p=0.01 beta=0.45 gamma=1 rho=0.3 chi=0.004 strategy=arbitrary mutation=true)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParamSet_Params(t *testing.T) {
	p := key(0.3).Params()
	if p.Rho != 0.3 || p.Strategy != epidemic.StrategyUniform || !p.Mutation {
		t.Errorf("unexpected params %+v", p)
	}
}
