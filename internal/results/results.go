// Package results holds sweep output: trajectories grouped by the parameter
// set that produced them, plus their persistence and consolidation.
package results

import (
	"fmt"
	"strconv"

	"github.com/nvandessel/sirsweep/internal/epidemic"
)

// ParamSet identifies one point of the sweep grid. It is comparable and is
// used directly as a map key.
type ParamSet struct {
	P        float64           `json:"p"`
	Beta     float64           `json:"beta"`
	Gamma    float64           `json:"gamma"`
	Rho      float64           `json:"rho"`
	Chi      float64           `json:"chi"`
	Strategy epidemic.Strategy `json:"strategy"`
	Mutation bool              `json:"mutation"`
}

// String renders the key for logs.
func (k ParamSet) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return fmt.Sprintf("(p=%s beta=%s gamma=%s rho=%s chi=%s strategy=%s mutation=%t)",
		f(k.P), f(k.Beta), f(k.Gamma), f(k.Rho), f(k.Chi), k.Strategy, k.Mutation)
}

// Params returns the engine parameters for this key.
func (k ParamSet) Params() epidemic.Params {
	return epidemic.Params{
		Beta:     k.Beta,
		Gamma:    k.Gamma,
		Rho:      k.Rho,
		Chi:      k.Chi,
		Strategy: k.Strategy,
		Mutation: k.Mutation,
	}
}

// Results is an ordered multi-map from ParamSet to trajectories. Keys keep
// their first-insertion order and runs keep their append order. The zero
// value is not usable; call New.
type Results struct {
	keys []ParamSet
	runs map[ParamSet][]epidemic.Trajectory
}

// New returns an empty Results.
func New() *Results {
	return &Results{runs: make(map[ParamSet][]epidemic.Trajectory)}
}

// Append adds one trajectory under key.
func (r *Results) Append(key ParamSet, tr epidemic.Trajectory) {
	existing, ok := r.runs[key]
	if !ok {
		r.keys = append(r.keys, key)
	}
	r.runs[key] = append(existing, tr)
}

// Get returns the trajectories under key, or nil if the key is absent.
func (r *Results) Get(key ParamSet) []epidemic.Trajectory {
	return r.runs[key]
}

// Keys returns the keys in first-insertion order.
func (r *Results) Keys() []ParamSet {
	out := make([]ParamSet, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of distinct keys.
func (r *Results) Len() int {
	return len(r.keys)
}

// Runs returns the total number of trajectories across all keys.
func (r *Results) Runs() int {
	total := 0
	for _, trs := range r.runs {
		total += len(trs)
	}
	return total
}

// Merge appends every run of other to r, key by key. Keys new to r are
// added after r's existing keys in other's order. other is not modified.
func (r *Results) Merge(other *Results) {
	if other == nil {
		return
	}
	for _, key := range other.keys {
		for _, tr := range other.runs[key] {
			r.Append(key, tr)
		}
	}
}

// Merge returns the key-wise concatenation of rs in argument order. None of
// the inputs are modified.
func Merge(rs ...*Results) *Results {
	out := New()
	for _, r := range rs {
		out.Merge(r)
	}
	return out
}
