package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nvandessel/sirsweep/internal/snapshot"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show a snapshot header",
		Long: `Print the header of a library batch or results artifact. With --verify
the payload checksum is checked as well.

Examples:
  sirsweep inspect simulation_results/p_0_batches_4-7.snap --verify`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			verify, _ := cmd.Flags().GetBool("verify")
			jsonOut, _ := cmd.Flags().GetBool("json")

			h, err := snapshot.ReadHeader(path)
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			var verifyErr error
			if verify {
				verifyErr = snapshot.Verify(path)
			}

			if jsonOut {
				out := map[string]any{
					"file":   path,
					"header": h,
					"bytes":  info.Size(),
				}
				if verify {
					out["valid"] = verifyErr == nil
					if verifyErr != nil {
						out["error"] = verifyErr.Error()
					}
				}
				if err := writeJSON(cmd, out); err != nil {
					return err
				}
				return verifyErr
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "File:     %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
			fmt.Fprintf(w, "Kind:     %s (format v%d)\n", h.Kind, h.Version)
			fmt.Fprintf(w, "Created:  %s (%s)\n", h.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(h.CreatedAt))
			fmt.Fprintf(w, "Entries:  %s\n", humanize.Comma(int64(h.Count)))
			fmt.Fprintf(w, "Checksum: %s\n", h.Checksum)
			keys := make([]string, 0, len(h.Metadata))
			for k := range h.Metadata {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "  %s: %s\n", k, h.Metadata[k])
			}
			if verify {
				if verifyErr != nil {
					fmt.Fprintf(w, "FAILED: %v\n", verifyErr)
					return fmt.Errorf("checksum verification failed: %w", verifyErr)
				}
				fmt.Fprintln(w, "OK: checksum verified")
			}
			return nil
		},
	}
	cmd.Flags().Bool("verify", false, "Verify the payload checksum")
	return cmd
}
