package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taloscope/taloscope/pkg/pipeline"
)

type layoutOpts struct {
	output   string
	noCache  bool
	compact  bool
	watch    bool
	detailed bool
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [resources.json|resources.yaml]",
		Short: "Lay out a resource collection",
		Long: `Lay out a resource collection.

The input is either the console's envelope ({"talosClusters": [...], ...}),
a Kubernetes List, or a multi-document YAML stream of Talos resources. The
output format follows the extension of --output: .json (default), .dot or .svg.

Results are cached; --no-cache forces a recomputation. With --watch the
layout is recomputed every time the input file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "use the compact 150x50 node footprint")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "recompute when the input changes")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include kind and position in DOT/SVG labels")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, opts layoutOpts) error {
	runner, err := c.newRunner(ctx, runnerOpts{noCache: opts.noCache, compact: opts.compact})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()

	output := opts.output
	if output == "" {
		output = defaultOutput(input, "layout.json")
	}

	prog := newProgress(c.Logger)
	res, err := runner.RunFile(ctx, input)
	if err != nil {
		return fmt.Errorf("layout %s: %w", input, err)
	}
	if err := c.writeLayout(ctx, runner, res, output, opts.detailed); err != nil {
		return err
	}
	prog.done("layout complete")

	printSuccess("Layout complete")
	printFile(output)
	printStats(res)
	printRejected(res)

	if !opts.watch {
		printNewline()
		printNextStep("Render", appName+" render "+output)
		return nil
	}

	printInfo("Watching %s for changes (ctrl+c to stop)", input)
	err = runner.Watch(ctx, input, 0, func(res *pipeline.Result, err error) {
		if err != nil {
			printError("%v", err)
			return
		}
		if err := c.writeLayout(ctx, runner, res, output, opts.detailed); err != nil {
			printError("%v", err)
			return
		}
		printSuccess("Updated %s", output)
		printStats(res)
		printRejected(res)
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (c *CLI) writeLayout(ctx context.Context, runner *pipeline.Runner, res *pipeline.Result, output string, detailed bool) error {
	format := pipeline.FormatFromPath(output)

	var spin *Spinner
	if format == pipeline.FormatSVG {
		spin = newSpinner(ctx, "Rendering SVG...")
		spin.Start()
	}
	data, err := runner.Render(ctx, res.Graph, format, detailed)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	return nil
}
