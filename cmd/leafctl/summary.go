package main

import (
	"fmt"
	"os"

	"github.com/leafkit/leafkit/checkpoint"
	"github.com/leafkit/leafkit/summary"
	"github.com/spf13/cobra"
)

var (
	summaryDepth  int
	summaryValues bool
	summaryElems  int
)

func init() {
	cmd := newSummaryCmd()
	cmd.Flags().IntVar(&summaryDepth, "depth", 0, "Maximum depth, 0 for unlimited")
	cmd.Flags().BoolVar(&summaryValues, "values", false, "Show leaf values")
	cmd.Flags().IntVar(&summaryElems, "max-elems", summary.DefaultMaxElems, "Largest tensor printed element-wise")
	rootCmd.AddCommand(cmd)
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <checkpoint>",
		Short: "Render stored leaves with shapes and parameter counts",
		Long: `The summary command renders every leaf stored in a checkpoint with
its dtype, shape, and parameter count, followed by totals. Checkpoints keep
leaves in traversal order without field names; pass --verbose to print the
recorded structure rendering, which carries the names.

Example:
  leafctl summary model.lfck
  leafctl summary model.lfck --values
  leafctl summary model.lfck --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(args)
		},
	}
	return cmd
}

func runSummary(args []string) error {
	path := args[0]

	printVerbose("Opening checkpoint: %s\n", path)

	c, err := checkpoint.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer c.Close()

	leaves := make([]any, c.NumLeaves())
	for i := range leaves {
		leaves[i] = c.Leaf(i).Value()
	}

	opts := summary.DefaultOptions()
	opts.MaxDepth = summaryDepth
	opts.ShowValues = summaryValues
	opts.MaxElems = summaryElems
	if jsonOut {
		opts.Format = summary.FormatJSON
	}

	printVerbose("Structure: %s\n\n", c.Structure())
	if err := summary.Render(os.Stdout, leaves, opts); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	return nil
}
