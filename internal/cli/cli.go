// Package cli implements the taloscope command-line interface.
package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taloscope/taloscope/pkg/buildinfo"
	"github.com/taloscope/taloscope/pkg/cache"
	"github.com/taloscope/taloscope/pkg/config"
	"github.com/taloscope/taloscope/pkg/layout"
	"github.com/taloscope/taloscope/pkg/pipeline"
)

const appName = "taloscope"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "taloscope lays out Talos cluster resources as a graph",
		Long: `taloscope turns TalosCluster, TalosControlPlane, TalosWorker and TalosMachine
resources into a layered graph, positions it, and keeps dragged nodes from
overlapping.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.loadConfig() },
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.dragCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

func (c *CLI) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// runnerOpts are per-command overrides of the file configuration.
type runnerOpts struct {
	noCache bool
	compact bool
}

// newRunner creates a pipeline runner from the loaded configuration. The
// caller closes runner.Cache.
func (c *CLI) newRunner(ctx context.Context, opts runnerOpts) (*pipeline.Runner, error) {
	cfg := *c.cfg
	if opts.compact {
		cfg.Layout.Compact = true
	}

	var store cache.Cache = cache.NewNullCache()
	if !opts.noCache {
		var err error
		if store, err = cfg.Cache.Open(ctx); err != nil {
			return nil, err
		}
	}

	engine := layout.NewEngine(cfg.Layout.Engine(), c.Logger)
	runner := pipeline.NewRunner(store, cfg.Cache.Keyer(), engine, c.Logger)
	runner.TTL = cfg.Cache.TTLDuration()
	runner.SpecOwners = cfg.Layout.SpecOwners
	return runner, nil
}

// defaultOutput derives "<input>.<suffix>" next to the input file.
func defaultOutput(input, suffix string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + suffix
}
