package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/pipeline"
)

type renderOpts struct {
	output   string
	detailed bool
}

// renderCommand renders a saved layout as DOT or SVG.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a layout to SVG or DOT",
		Long: `Render a layout produced by 'layout' or 'resolve'.

Node positions are pinned, so the drawing matches the computed layout. The
format follows the extension of --output: .svg (default) or .dot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include kind and position in labels")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
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

	output := opts.output
	if output == "" {
		output = defaultOutput(input, pipeline.FormatSVG)
	}
	res := &pipeline.Result{Graph: g}
	if err := c.writeLayout(ctx, runner, res, output, opts.detailed); err != nil {
		return err
	}

	printSuccess("Rendered %d nodes", len(g.Nodes))
	printFile(output)
	return nil
}
