package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvandessel/sirsweep/internal/network"
)

func newLadderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ladder",
		Short: "Print the rewiring probability ladder",
		Long: `Print the 21 rewiring probabilities the network library is keyed by.
Config files must use these exact values for sweep.p.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ladder := network.Ladder()
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				type point struct {
					Index int     `json:"index"`
					P     float64 `json:"p"`
				}
				points := make([]point, len(ladder))
				for i, p := range ladder {
					points[i] = point{Index: i, P: p}
				}
				return writeJSON(cmd, points)
			}
			for i, p := range ladder {
				fmt.Fprintf(cmd.OutOrStdout(), "p_%-3d %s\n", i, strconv.FormatFloat(p, 'g', -1, 64))
			}
			return nil
		},
	}
}
