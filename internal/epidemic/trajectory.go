package epidemic

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation is returned when a trajectory breaks the SIR
// accounting invariants. It always indicates an engine bug.
var ErrInvariantViolation = errors.New("trajectory invariant violation")

// Trajectory is the per-timestep time series of one simulation run. The four
// slices always have equal length; index 0 is the initial state.
type Trajectory struct {
	T []int `json:"t"`
	S []int `json:"s"`
	I []int `json:"i"`
	R []int `json:"r"`
}

// Len returns the number of recorded timesteps, including t=0.
func (tr Trajectory) Len() int {
	return len(tr.T)
}

// Final returns the last recorded (S, I, R) counts.
func (tr Trajectory) Final() (s, i, r int) {
	last := len(tr.T) - 1
	if last < 0 {
		return 0, 0, 0
	}
	return tr.S[last], tr.I[last], tr.R[last]
}

// PeakInfected returns the maximum infected count and the timestep it was
// first reached.
func (tr Trajectory) PeakInfected() (peak, at int) {
	for idx, v := range tr.I {
		if v > peak {
			peak, at = v, tr.T[idx]
		}
	}
	return peak, at
}

// Validate checks the trajectory against a population of n nodes: equal
// lengths, S+I+R == n and non-negative counts at every index, consecutive
// timesteps, and non-decreasing R.
func (tr Trajectory) Validate(n int) error {
	l := len(tr.T)
	if len(tr.S) != l || len(tr.I) != l || len(tr.R) != l {
		return fmt.Errorf("lengths t=%d s=%d i=%d r=%d: %w", l, len(tr.S), len(tr.I), len(tr.R), ErrInvariantViolation)
	}
	for idx := 0; idx < l; idx++ {
		s, i, r := tr.S[idx], tr.I[idx], tr.R[idx]
		if s < 0 || i < 0 || r < 0 {
			return fmt.Errorf("negative count at index %d (s=%d i=%d r=%d): %w", idx, s, i, r, ErrInvariantViolation)
		}
		if s+i+r != n {
			return fmt.Errorf("s+i+r=%d != n=%d at index %d: %w", s+i+r, n, idx, ErrInvariantViolation)
		}
		if tr.T[idx] != idx {
			return fmt.Errorf("timestep %d at index %d: %w", tr.T[idx], idx, ErrInvariantViolation)
		}
		if idx > 0 && r < tr.R[idx-1] {
			return fmt.Errorf("recovered decreased from %d to %d at index %d: %w", tr.R[idx-1], r, idx, ErrInvariantViolation)
		}
	}
	return nil
}

// append records one timestep. S is derived from n, I and R.
func (tr *Trajectory) append(t, n, infected, recovered int) {
	tr.T = append(tr.T, t)
	tr.S = append(tr.S, n-infected-recovered)
	tr.I = append(tr.I, infected)
	tr.R = append(tr.R, recovered)
}
