package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvandessel/sirsweep/internal/epidemic"
	"github.com/nvandessel/sirsweep/internal/logging"
	"github.com/nvandessel/sirsweep/internal/netlib"
	"github.com/nvandessel/sirsweep/internal/network"
	"github.com/nvandessel/sirsweep/internal/results"
)

// Worker runs the full parameter grid over one network batch.
type Worker struct {
	store  netlib.BatchStore
	engine *epidemic.Engine
	seed   uint64
	logger *slog.Logger
}

// NewWorker creates a worker reading batches from store. seed selects the
// random streams; each unit draws from its own stream.
func NewWorker(store netlib.BatchStore, engine *epidemic.Engine, seed uint64, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{store: store, engine: engine, seed: seed, logger: logger}
}

// RunUnit loads the batch for u and runs every graph against every key of
// opts. For each graph the keys are visited in Options.Keys order, so each
// key's trajectories are in graph order.
func (w *Worker) RunUnit(ctx context.Context, opts Options, u Unit) (*results.Results, error) {
	graphs, err := w.store.LoadBatch(ctx, u.PIndex, u.Batch)
	if err != nil {
		return nil, err
	}
	keys := opts.Keys(u)
	rng := network.StreamRand(w.seed, u.PIndex, u.Batch)
	out := results.New()

	trace := w.logger.Enabled(ctx, logging.LevelTrace)
	w.logger.Debug("unit loaded", "unit", u.String(), "graphs", len(graphs), "grid", len(keys))

	for gi, g := range graphs {
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			tr, err := w.engine.Run(g, key.Params(), rng)
			if err != nil {
				return nil, fmt.Errorf("graph %d %s: %w", gi, key, err)
			}
			if trace {
				w.logger.Log(ctx, logging.LevelTrace, "run",
					"graph", gi, "key", key.String(), "steps", tr.Len(), "final_r", tr.R[len(tr.R)-1])
			}
			out.Append(key, tr)
		}
		graphs[gi] = nil
	}
	return out, nil
}
