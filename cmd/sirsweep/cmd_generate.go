package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nvandessel/sirsweep/internal/netlib"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the network library",
		Long: `Generate connected Watts-Strogatz networks for the requested ladder
indices and batches and store them in the configured library.

Examples:
  sirsweep generate                         # the whole library
  sirsweep generate --index 0,10 --batch 4,5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			indices, _ := cmd.Flags().GetIntSlice("index")
			batches, _ := cmd.Flags().GetIntSlice("batch")
			spec, err := cfg.LibrarySpec(indices, batches)
			if err != nil {
				return err
			}

			store, err := cfg.OpenLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			start := time.Now()
			if err := netlib.Build(cmd.Context(), store, spec, newLogger(cmd, cfg)); err != nil {
				return err
			}
			elapsed := time.Since(start)
			count := len(spec.Indices) * len(spec.Batches)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"library":    cfg.Library.Dir,
					"format":     cfg.Library.Format,
					"batches":    count,
					"graphs":     count * spec.BatchSize,
					"duration_s": elapsed.Seconds(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %s batches (%s graphs of %s nodes) in %s\n",
				humanize.Comma(int64(count)),
				humanize.Comma(int64(count*spec.BatchSize)),
				humanize.Comma(int64(spec.Nodes)),
				elapsed.Round(time.Millisecond))
			fmt.Fprintf(cmd.OutOrStdout(), "  Library: %s (%s)\n", cfg.Library.Dir, cfg.Library.Format)
			return nil
		},
	}
	cmd.Flags().IntSlice("index", nil, "Ladder indices to generate (default: all)")
	cmd.Flags().IntSlice("batch", nil, "Batch indices to generate (default: all)")
	return cmd
}
