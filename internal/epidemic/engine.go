// Package epidemic implements the discrete-time stochastic SIR process on a
// contact graph: vaccination strategies choose who is immunized and who is
// infected first, the transmission model decides each contact, and an
// optional Markov chain mutates the pathogen genotype as it spreads.
package epidemic

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/nvandessel/sirsweep/internal/graph"
)

// ErrInvalidParams is returned when a parameter set is out of range.
var ErrInvalidParams = errors.New("invalid epidemic parameters")

// Config holds tunable parameters for the engine.
type Config struct {
	// MaxSteps is the timestep ceiling. Default: 1000.
	MaxSteps int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{MaxSteps: 1000}
}

// Params is the epidemiological parameter set of one run.
type Params struct {
	Beta     float64  // infection rate, ignored when Mutation is set
	Gamma    float64  // recovery rate
	Rho      float64  // vaccination coverage
	Chi      float64  // mutation rate
	Strategy Strategy // vaccination policy
	Mutation bool     // genotype-dependent infectivity with mutation
}

// Validate checks that every rate lies in [0, 1] and the strategy is known.
func (p Params) Validate() error {
	rates := []struct {
		name  string
		value float64
	}{
		{"beta", p.Beta},
		{"gamma", p.Gamma},
		{"rho", p.Rho},
		{"chi", p.Chi},
	}
	for _, r := range rates {
		if math.IsNaN(r.value) || r.value < 0 || r.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v: %w", r.name, r.value, ErrInvalidParams)
		}
	}
	if !p.Strategy.Valid() {
		return fmt.Errorf("strategy %q: %w", string(p.Strategy), ErrInvalidParams)
	}
	return nil
}

// VaccinationCount returns round(n*rho), rounding halves to even.
func VaccinationCount(n int, rho float64) int {
	return int(math.RoundToEven(float64(n) * rho))
}

// Engine runs SIR trajectories. The engine is stateless: all per-node state
// lives in arrays created during each call to Run, so one engine may be
// shared by many workers.
type Engine struct {
	config Config
}

// NewEngine creates a new epidemic engine.
func NewEngine(config Config) *Engine {
	if config.MaxSteps <= 0 {
		config.MaxSteps = DefaultConfig().MaxSteps
	}
	return &Engine{config: config}
}

// Run simulates one epidemic on g and returns its trajectory.
//
// Each timestep, every currently infected node first tries to infect each
// susceptible neighbor, then draws its own recovery. Nodes infected during
// the step do not draw recovery until the next step. With mutation enabled,
// every node entering the next infected set takes one mutation step. The run
// ends when nobody is infected or the step ceiling is reached.
func (e *Engine) Run(g *graph.Graph, p Params, rng *rand.Rand) (Trajectory, error) {
	if err := p.Validate(); err != nil {
		return Trajectory{}, err
	}
	n := g.Order()

	vaccinated, seed, err := p.Strategy.Select(g, VaccinationCount(n, p.Rho), rng)
	if err != nil {
		return Trajectory{}, fmt.Errorf("selecting vaccinated nodes: %w", err)
	}

	susceptible := make([]bool, n)
	genotype := make([]Genotype, n)
	for u := range susceptible {
		susceptible[u] = true
		genotype[u] = DefaultGenotype
	}
	for _, u := range vaccinated {
		susceptible[u] = false
	}
	susceptible[seed] = false

	// Vaccinated nodes count as recovered from the start.
	recovered := len(vaccinated)
	infected := []int{seed}
	next := make([]int, 0, 16)

	var tr Trajectory
	tr.append(0, n, len(infected), recovered)

	for t := 0; len(infected) > 0 && t < e.config.MaxSteps; {
		next = next[:0]
		for _, u := range infected {
			gu := genotype[u]
			for _, v := range g.Neighbors(u) {
				if susceptible[v] && AttemptTransmission(p.Beta, p.Mutation, gu, rng) {
					susceptible[v] = false
					genotype[v] = gu
					next = append(next, v)
				}
			}
			if rng.Float64() < p.Gamma {
				recovered++
			} else {
				next = append(next, u)
			}
		}

		if p.Mutation {
			for _, u := range next {
				genotype[u] = Mutate(genotype[u], p.Chi, rng)
			}
		}

		infected, next = next, infected
		t++
		tr.append(t, n, len(infected), recovered)
	}

	if err := tr.Validate(n); err != nil {
		return Trajectory{}, fmt.Errorf("strategy %s on %d nodes: %w", p.Strategy, n, err)
	}
	return tr, nil
}
