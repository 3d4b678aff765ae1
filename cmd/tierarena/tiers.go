package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/tierarena"
)

func init() {
	rootCmd.AddCommand(newTiersCmd())
}

func newTiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Show the size classes",
		Long: `The tiers command prints every size class with the largest request it
serves and the default capacity of its chunks.

Example:
  tierarena tiers
  tierarena tiers --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTiers(cmd)
		},
	}
}

type tierInfo struct {
	Tier      string `json:"tier"`
	MaxAlloc  int    `json:"max_alloc"`
	ChunkSize int    `json:"chunk_size"`
}

func runTiers(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	specs := tierarena.Tiers()

	if jsonOut {
		infos := make([]tierInfo, 0, len(specs))
		for _, s := range specs {
			infos = append(infos, tierInfo{s.Tier.String(), s.MaxAlloc, s.ChunkSize})
		}
		return printJSON(out, infos)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TIER\tMAX ALLOC\tCHUNK SIZE\t")
	for _, s := range specs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n",
			s.Tier, humanize.IBytes(uint64(s.MaxAlloc)), humanize.IBytes(uint64(s.ChunkSize)))
	}
	return tw.Flush()
}
