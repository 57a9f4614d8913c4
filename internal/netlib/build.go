package netlib

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/sirsweep/internal/graph"
	"github.com/nvandessel/sirsweep/internal/network"
)

// LibrarySpec describes which part of the network library to generate.
type LibrarySpec struct {
	Nodes     int
	Degree    int
	BatchSize int

	// Indices are ladder indices to generate. Empty means the whole ladder.
	Indices []int

	// Batches are batch indices to generate per ladder point. Empty means
	// 0..network.Batches-1.
	Batches []int

	// Tries bounds the connected-graph retries per graph. Zero means Nodes.
	Tries int

	Seed    uint64
	Workers int
}

// DefaultLibrarySpec returns the layout of the reference library.
func DefaultLibrarySpec() LibrarySpec {
	return LibrarySpec{
		Nodes:     network.Nodes,
		Degree:    network.Degree,
		BatchSize: network.BatchSize,
		Tries:     network.Nodes,
		Seed:      network.LibrarySeed,
	}
}

// Validate checks the spec and fills empty index lists.
func (s *LibrarySpec) Validate() error {
	if s.Nodes <= 0 {
		return fmt.Errorf("library: nodes must be positive, got %d", s.Nodes)
	}
	if s.Degree < 0 || s.Degree >= s.Nodes {
		return fmt.Errorf("library: degree must be in [0, %d), got %d", s.Nodes, s.Degree)
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("library: batch size must be positive, got %d", s.BatchSize)
	}
	if s.Tries <= 0 {
		s.Tries = s.Nodes
	}
	if len(s.Indices) == 0 {
		s.Indices = make([]int, network.LadderSize)
		for i := range s.Indices {
			s.Indices[i] = i
		}
	}
	for _, i := range s.Indices {
		if _, err := network.ProbabilityAt(i); err != nil {
			return fmt.Errorf("library: %w", err)
		}
	}
	if len(s.Batches) == 0 {
		s.Batches = make([]int, network.Batches)
		for b := range s.Batches {
			s.Batches[b] = b
		}
	}
	for _, b := range s.Batches {
		if b < 0 || b >= network.Batches {
			return fmt.Errorf("library: batch index must be in [0, %d), got %d", network.Batches, b)
		}
	}
	return nil
}

// BuildBatch generates the graphs of one batch. The result depends only on
// the spec and (pIndex, batch).
func BuildBatch(ctx context.Context, spec LibrarySpec, pIndex, batch int) ([]*graph.Graph, error) {
	p, err := network.ProbabilityAt(pIndex)
	if err != nil {
		return nil, err
	}
	rng := network.StreamRand(spec.Seed, pIndex, batch)
	graphs := make([]*graph.Graph, 0, spec.BatchSize)
	for range spec.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := network.ConnectedWattsStrogatz(spec.Nodes, spec.Degree, p, spec.Tries, rng)
		if err != nil {
			return nil, fmt.Errorf("p_%d batch %d: %w", pIndex, batch, err)
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// Build generates every (index, batch) of spec and saves it to store.
// Batches are generated concurrently; the first failure cancels the rest.
func Build(ctx context.Context, store BatchStore, spec LibrarySpec, logger *slog.Logger) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := spec.Workers
	if workers <= 0 {
		workers = max(1, runtime.NumCPU()/2)
	}

	logger.Info("building network library",
		"indices", len(spec.Indices), "batches", len(spec.Batches),
		"batch_size", spec.BatchSize, "nodes", spec.Nodes, "workers", workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, pIndex := range spec.Indices {
		for _, batch := range spec.Batches {
			g.Go(func() error {
				start := time.Now()
				graphs, err := BuildBatch(ctx, spec, pIndex, batch)
				if err != nil {
					return err
				}
				if err := store.SaveBatch(ctx, pIndex, batch, graphs); err != nil {
					return err
				}
				logger.Debug("batch generated",
					"p_index", pIndex, "batch", batch,
					"graphs", len(graphs), "duration", time.Since(start))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("building network library: %w", err)
	}
	return nil
}
