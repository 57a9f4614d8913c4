// Package sweep runs the epidemic engine over the Cartesian product of a
// parameter grid and a slice of the network library, fanning the work out
// as one unit per (probability index, batch).
package sweep

import (
	"errors"
	"fmt"
	"math"

	"github.com/nvandessel/sirsweep/internal/epidemic"
	"github.com/nvandessel/sirsweep/internal/network"
	"github.com/nvandessel/sirsweep/internal/results"
)

// ErrInvalidOptions is returned when sweep options fail validation.
var ErrInvalidOptions = errors.New("invalid sweep options")

// Options is the sweep grid. Every field is a list; a single value is a
// one-element list.
type Options struct {
	P          []float64
	Batches    []int
	Beta       []float64
	Gamma      []float64
	Rho        []float64
	Chi        []float64
	Strategies []epidemic.Strategy
	Mutation   []bool
}

// Unit is one independent piece of sweep work.
type Unit struct {
	PIndex int
	P      float64
	Batch  int
}

func (u Unit) String() string {
	return fmt.Sprintf("p_%d (p=%g) batch %d", u.PIndex, u.P, u.Batch)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}

func checkRates(name string, values []float64) error {
	if len(values) == 0 {
		return invalid("%s: at least one value required", name)
	}
	for _, v := range values {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return invalid("%s: %v not in [0, 1]", name, v)
		}
	}
	return nil
}

// Validate checks every option. A p value outside the ladder is reported
// with network.ErrNotInLadder in the chain.
func (o Options) Validate() error {
	if len(o.P) == 0 {
		return invalid("p: at least one value required")
	}
	for _, p := range o.P {
		if _, err := network.ResolveIndex(p); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
	}
	if len(o.Batches) == 0 {
		return invalid("batches: at least one value required")
	}
	for _, b := range o.Batches {
		if b < 0 || b >= network.Batches {
			return invalid("batches: %d not in [0, %d]", b, network.Batches-1)
		}
	}
	for _, r := range []struct {
		name   string
		values []float64
	}{
		{"beta", o.Beta},
		{"gamma", o.Gamma},
		{"rho", o.Rho},
		{"chi", o.Chi},
	} {
		if err := checkRates(r.name, r.values); err != nil {
			return err
		}
	}
	if len(o.Strategies) == 0 {
		return invalid("strategy: at least one value required")
	}
	for _, s := range o.Strategies {
		if !s.Valid() {
			return fmt.Errorf("%w: %w: %q", ErrInvalidOptions, epidemic.ErrUnknownStrategy, string(s))
		}
	}
	if len(o.Mutation) == 0 {
		return invalid("mutation: at least one value required")
	}
	return nil
}

// Units resolves the requested probabilities and returns one unit per
// (probability index, batch) in request order. Repeated pairs are scheduled
// once.
func (o Options) Units() ([]Unit, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	type pair struct{ pIndex, batch int }
	seen := make(map[pair]bool)
	var units []Unit
	for _, p := range o.P {
		idx, err := network.ResolveIndex(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
		for _, b := range o.Batches {
			if seen[pair{idx, b}] {
				continue
			}
			seen[pair{idx, b}] = true
			units = append(units, Unit{PIndex: idx, P: p, Batch: b})
		}
	}
	return units, nil
}

// GridSize is the number of parameter combinations run per graph.
func (o Options) GridSize() int {
	return len(o.Beta) * len(o.Gamma) * len(o.Rho) * len(o.Chi) * len(o.Strategies) * len(o.Mutation)
}

// Keys enumerates the result keys of one unit in run order.
func (o Options) Keys(u Unit) []results.ParamSet {
	keys := make([]results.ParamSet, 0, o.GridSize())
	for _, beta := range o.Beta {
		for _, gamma := range o.Gamma {
			for _, rho := range o.Rho {
				for _, chi := range o.Chi {
					for _, s := range o.Strategies {
						for _, m := range o.Mutation {
							keys = append(keys, results.ParamSet{
								P:        u.P,
								Beta:     beta,
								Gamma:    gamma,
								Rho:      rho,
								Chi:      chi,
								Strategy: s,
								Mutation: m,
							})
						}
					}
				}
			}
		}
	}
	return keys
}
