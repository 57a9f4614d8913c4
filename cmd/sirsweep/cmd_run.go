package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nvandessel/sirsweep/internal/logging"
	"github.com/nvandessel/sirsweep/internal/results"
	"github.com/nvandessel/sirsweep/internal/sweep"
)

type artifactSummary struct {
	PIndex int     `json:"p_index"`
	P      float64 `json:"p"`
	Path   string  `json:"path"`
	Keys   int     `json:"keys"`
	Runs   int     `json:"runs"`
	Bytes  int64   `json:"bytes"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sweep the parameter grid and write one artifact per probability",
		Long: `Run the configured parameter sweep over the network library. Each
rewiring probability is swept in turn across all requested batches and
written to <results>/p_<i>_batches_<label>.snap, then recorded in the
results catalog.

Examples:
  sirsweep run --config sweep.yaml
  sirsweep run --p 0.01,1 --batch 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts := cfg.SweepOptions()
			if cmd.Flags().Changed("p") {
				opts.P, _ = cmd.Flags().GetFloat64Slice("p")
			}
			if cmd.Flags().Changed("batch") {
				opts.Batches, _ = cmd.Flags().GetIntSlice("batch")
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			logger := newLogger(cmd, cfg)
			store, err := cfg.OpenLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			catalog, err := results.OpenCatalog(filepath.Join(cfg.Results.Dir, results.CatalogFileName))
			if err != nil {
				return err
			}
			defer catalog.Close()

			progress := logging.NewProgressLog(cfg.Results.Dir, cfg.Logging.Level)
			defer progress.Close()

			label := results.BatchLabel(opts.Batches)
			orch := sweep.NewOrchestrator(store, cfg.OrchestratorConfig(), logger, progress)
			jsonOut, _ := cmd.Flags().GetBool("json")
			start := time.Now()

			var written []artifactSummary
			err = orch.SweepEach(cmd.Context(), opts, func(pIndex int, p float64, res *results.Results) error {
				path := filepath.Join(cfg.Results.Dir, results.ArtifactName(pIndex, opts.Batches))
				meta := map[string]string{
					"p_index": strconv.Itoa(pIndex),
					"p":       strconv.FormatFloat(p, 'g', -1, 64),
					"batches": label,
				}
				h, err := results.WriteArtifact(path, results.ArtifactKind, res, meta)
				if err != nil {
					return err
				}
				if _, err := catalog.Record(cmd.Context(), results.Entry{
					Kind:       results.ArtifactKind,
					PIndex:     pIndex,
					BatchLabel: label,
					Path:       path,
					Checksum:   h.Checksum,
					Keys:       res.Len(),
					Runs:       res.Runs(),
					CreatedAt:  h.CreatedAt,
				}); err != nil {
					return err
				}

				summary := artifactSummary{PIndex: pIndex, P: p, Path: path, Keys: res.Len(), Runs: res.Runs()}
				if info, err := os.Stat(path); err == nil {
					summary.Bytes = info.Size()
				}
				written = append(written, summary)
				if !jsonOut {
					fmt.Fprintf(cmd.OutOrStdout(), "p_%d (p=%g): %s runs over %s keys, %s -> %s\n",
						pIndex, p,
						humanize.Comma(int64(summary.Runs)),
						humanize.Comma(int64(summary.Keys)),
						humanize.Bytes(uint64(summary.Bytes)),
						path)
				}
				return nil
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"batches":    label,
					"artifacts":  written,
					"duration_s": time.Since(start).Seconds(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %d artifacts in %s\n", len(written), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().Float64Slice("p", nil, "Rewiring probabilities to sweep (must be ladder values)")
	cmd.Flags().IntSlice("batch", nil, "Batch indices to sweep")
	return cmd
}
