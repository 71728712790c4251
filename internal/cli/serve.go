package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/taloscope/taloscope/internal/server"
	"github.com/taloscope/taloscope/pkg/observability"
	"github.com/taloscope/taloscope/pkg/pipeline"
)

type serveOpts struct {
	addr    string
	noCache bool
	compact bool
	watch   bool
}

// serveCommand serves layout and resolve over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [resources.json|resources.yaml]",
		Short: "Serve the layout of a resource file over HTTP",
		Long: `Serve the layout of a resource file over HTTP for a browser front end.

Endpoints:
  GET  /api/layout          positioned graph and layout report
  POST /api/layout/reload   re-read the resource file
  GET  /api/nodes/{id}      a single node
  POST /api/resolve         {"node": id, "x": X, "y": Y, "commit": bool}
  GET  /metrics             prometheus metrics
  GET  /healthz             liveness`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "use the compact 150x50 node footprint")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload when the resource file changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts serveOpts) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	runner, err := c.newRunner(ctx, runnerOpts{noCache: opts.noCache, compact: opts.compact})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()

	srv := server.New(runner, input, hooks.Handler(), c.Logger)
	if err := srv.Reload(ctx); err != nil {
		return fmt.Errorf("layout %s: %w", input, err)
	}

	if opts.watch {
		go func() {
			err := runner.Watch(ctx, input, 0, func(res *pipeline.Result, err error) {
				if err != nil {
					c.Logger.Error("reload failed, keeping previous layout", "err", err)
					return
				}
				srv.Set(res)
				c.Logger.Info("reloaded layout", "nodes", res.Stats.Nodes)
			})
			if err != nil {
				c.Logger.Error("watch stopped", "err", err)
			}
		}()
	}

	addr := opts.addr
	if addr == "" {
		addr = c.cfg.Server.Addr
	}
	printInfo("Serving %s on %s", input, StyleHighlight.Render(addr))

	err = srv.ListenAndServe(ctx, addr, c.cfg.Server.ReadTimeoutDuration(), c.cfg.Server.ShutdownTimeoutDuration())
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
