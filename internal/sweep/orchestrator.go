package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/sirsweep/internal/epidemic"
	"github.com/nvandessel/sirsweep/internal/logging"
	"github.com/nvandessel/sirsweep/internal/netlib"
	"github.com/nvandessel/sirsweep/internal/results"
)

// Config holds tunable parameters for the orchestrator.
type Config struct {
	// Workers is the pool size. Zero means half the CPUs, at least one.
	Workers int

	// Seed selects the per-unit random streams.
	Seed uint64

	// Engine configures every simulation run.
	Engine epidemic.Config
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		Workers: DefaultWorkers(),
		Engine:  epidemic.DefaultConfig(),
	}
}

// DefaultWorkers returns half the available CPUs, at least one.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()/2)
}

// UnitError reports the unit that failed a sweep.
type UnitError struct {
	PIndex int
	P      float64
	Batch  int
	Err    error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("sweep unit p_%d (p=%g) batch %d: %v", e.PIndex, e.P, e.Batch, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// Orchestrator fans sweep units out over a bounded worker pool and merges
// their results.
type Orchestrator struct {
	config   Config
	worker   *Worker
	logger   *slog.Logger
	progress *logging.ProgressLog
}

// NewOrchestrator creates an orchestrator over store. logger and progress
// may be nil.
func NewOrchestrator(store netlib.BatchStore, config Config, logger *slog.Logger, progress *logging.ProgressLog) *Orchestrator {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	engine := epidemic.NewEngine(config.Engine)
	return &Orchestrator{
		config:   config,
		worker:   NewWorker(store, engine, config.Seed, logger),
		logger:   logger,
		progress: progress,
	}
}

type unitResult struct {
	index int
	res   *results.Results
}

// Sweep runs every unit of opts and returns the merged results. Units are
// merged in schedule order, so the output is the same for any pool size.
// The first unit error cancels the remaining units and is returned as a
// *UnitError.
func (o *Orchestrator) Sweep(ctx context.Context, opts Options) (*results.Results, error) {
	units, err := opts.Units()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	o.logger.Info("sweep started",
		"units", len(units), "grid", opts.GridSize(), "workers", o.config.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.config.Workers)

	collected := make(chan unitResult)
	slots := make([]*results.Results, len(units))
	reduced := make(chan struct{})
	go func() {
		defer close(reduced)
		for ur := range collected {
			slots[ur.index] = ur.res
		}
	}()

	for i, u := range units {
		g.Go(func() error {
			res, err := o.runUnit(gctx, opts, u)
			if err != nil {
				return &UnitError{PIndex: u.PIndex, P: u.P, Batch: u.Batch, Err: err}
			}
			select {
			case collected <- unitResult{index: i, res: res}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	err = g.Wait()
	close(collected)
	<-reduced
	if err != nil {
		o.logger.Error("sweep failed", "error", err)
		return nil, err
	}

	out := results.Merge(slots...)
	o.progress.Log(logging.ProgressEvent{Event: logging.EventSweepDone, Runs: out.Runs(), Duration: time.Since(start).Seconds()})
	o.logger.Info("sweep finished",
		"keys", out.Len(), "runs", out.Runs(), "duration", time.Since(start).Round(time.Millisecond))
	return out, nil
}

func (o *Orchestrator) runUnit(ctx context.Context, opts Options, u Unit) (*results.Results, error) {
	start := time.Now()
	o.progress.Log(logging.ProgressEvent{Event: logging.EventUnitStarted, PIndex: u.PIndex, P: u.P, Batch: u.Batch})

	res, err := o.worker.RunUnit(ctx, opts, u)
	if err != nil {
		o.progress.Log(logging.ProgressEvent{
			Event: logging.EventUnitFailed, PIndex: u.PIndex, P: u.P, Batch: u.Batch,
			Duration: time.Since(start).Seconds(), Error: err.Error(),
		})
		return nil, err
	}

	o.progress.Log(logging.ProgressEvent{
		Event: logging.EventUnitFinished, PIndex: u.PIndex, P: u.P, Batch: u.Batch,
		Runs: res.Runs(), Duration: time.Since(start).Seconds(),
	})
	o.logger.Debug("unit finished", "unit", u.String(), "runs", res.Runs(), "duration", time.Since(start))
	return res, nil
}

// SweepEach runs one sweep per requested probability and hands each result
// to fn before moving on, so only one probability's results are held at a
// time. fn receives the ladder index of p.
func (o *Orchestrator) SweepEach(ctx context.Context, opts Options, fn func(pIndex int, p float64, res *results.Results) error) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	done := make(map[int]bool)
	for _, p := range opts.P {
		single := opts
		single.P = []float64{p}
		units, err := single.Units()
		if err != nil {
			return err
		}
		pIndex := units[0].PIndex
		if done[pIndex] {
			continue
		}
		done[pIndex] = true

		res, err := o.Sweep(ctx, single)
		if err != nil {
			return err
		}
		if err := fn(pIndex, p, res); err != nil {
			return fmt.Errorf("p_%d: %w", pIndex, err)
		}
	}
	return nil
}
