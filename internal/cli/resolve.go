package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taloscope/taloscope/pkg/graph"
)

type resolveOpts struct {
	node   string
	x, y   float64
	output string
}

// resolveCommand moves one node of a saved layout and resolves collisions.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve [layout.json]",
		Short: "Move a node and push it clear of the nodes it overlaps",
		Long: `Move a node of a saved layout to --x/--y and resolve collisions.

The node is pushed along the axis of smaller overlap away from each node it
overlaps, in a single pass. Overlaps that remain after the pass are reported.
With --output the updated layout is written to a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.node, "node", "", "id of the node to move (required)")
	cmd.Flags().Float64Var(&opts.x, "x", 0, "proposed x coordinate")
	cmd.Flags().Float64Var(&opts.y, "y", 0, "proposed y coordinate")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the updated layout to this file")
	_ = cmd.MarkFlagRequired("node")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, input string, opts resolveOpts) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	if err := g.Validate(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, runnerOpts{noCache: true})
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	moved, rr, err := runner.Resolve(ctx, g, opts.node, graph.Position{X: opts.x, Y: opts.y})
	if err != nil {
		return err
	}

	printSuccess("%s placed at (%g, %g)", StyleHighlight.Render(rr.NodeID), rr.Position.X, rr.Position.Y)
	for _, corr := range rr.Corrections {
		printDetail("pushed %s off %s: (%g, %g) → (%g, %g)", corr.Axis, corr.Against, corr.From.X, corr.From.Y, corr.To.X, corr.To.Y)
	}
	for _, id := range rr.Residual {
		printWarning("still overlaps %s", id)
	}

	if opts.output != "" {
		if err := graph.WriteGraphFile(moved, opts.output); err != nil {
			return fmt.Errorf("write output %s: %w", opts.output, err)
		}
		printFile(opts.output)
	}
	return nil
}
