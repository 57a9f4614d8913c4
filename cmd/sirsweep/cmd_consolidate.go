package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nvandessel/sirsweep/internal/network"
	"github.com/nvandessel/sirsweep/internal/results"
)

func newConsolidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Merge per-probability artifacts into one dataset",
		Long: `Merge every per-probability artifact of one batch selection into
<results>/data_batches_<label>.snap. Inputs come from the results catalog;
when the catalog has none, the results directory is probed for each ladder
index.

Examples:
  sirsweep consolidate --batch 4,5,6,7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			batches := []int(cfg.Sweep.Batches)
			if cmd.Flags().Changed("batch") {
				batches, _ = cmd.Flags().GetIntSlice("batch")
			}
			label := results.BatchLabel(batches)
			logger := newLogger(cmd, cfg)

			catalog, err := results.OpenCatalog(filepath.Join(cfg.Results.Dir, results.CatalogFileName))
			if err != nil {
				return err
			}
			defer catalog.Close()

			entries, err := catalog.List(cmd.Context(), results.ArtifactKind, label)
			if err != nil {
				return err
			}
			var paths []string
			for _, e := range entries {
				paths = append(paths, e.Path)
			}
			if len(paths) == 0 {
				logger.Info("catalog has no artifacts, probing results directory", "batches", label)
				paths, err = probeArtifacts(cfg.Results.Dir, batches)
				if err != nil {
					return err
				}
			}
			if len(paths) == 0 {
				return fmt.Errorf("no artifacts found for batches %s in %s", label, cfg.Results.Dir)
			}

			merged, err := results.Consolidate(cmd.Context(), paths)
			if err != nil {
				return err
			}

			out := filepath.Join(cfg.Results.Dir, results.ConsolidatedName(batches))
			h, err := results.WriteArtifact(out, results.ConsolidatedKind, merged, map[string]string{
				"batches": label,
				"inputs":  fmt.Sprint(len(paths)),
			})
			if err != nil {
				return err
			}
			if _, err := catalog.Record(cmd.Context(), results.Entry{
				Kind:       results.ConsolidatedKind,
				PIndex:     -1,
				BatchLabel: label,
				Path:       out,
				Checksum:   h.Checksum,
				Keys:       merged.Len(),
				Runs:       merged.Runs(),
				CreatedAt:  h.CreatedAt,
			}); err != nil {
				return err
			}

			var size int64
			if info, err := os.Stat(out); err == nil {
				size = info.Size()
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"path":   out,
					"inputs": len(paths),
					"keys":   merged.Len(),
					"runs":   merged.Runs(),
					"bytes":  size,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Consolidated %d artifacts: %s runs over %s keys, %s\n",
				len(paths),
				humanize.Comma(int64(merged.Runs())),
				humanize.Comma(int64(merged.Len())),
				humanize.Bytes(uint64(size)))
			fmt.Fprintf(cmd.OutOrStdout(), "  Output: %s\n", out)
			return nil
		},
	}
	cmd.Flags().IntSlice("batch", nil, "Batch selection the artifacts were run with")
	return cmd
}

// probeArtifacts returns the existing artifact paths for batches in ladder
// order.
func probeArtifacts(dir string, batches []int) ([]string, error) {
	var paths []string
	for i := range network.LadderSize {
		path := filepath.Join(dir, results.ArtifactName(i, batches))
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
