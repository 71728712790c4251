package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taloscope/taloscope/pkg/cache"
	"github.com/taloscope/taloscope/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout from the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := c.cfg.Cache.Backend
			if backend == config.BackendNone {
				printInfo("Caching is disabled")
				return nil
			}
			store, err := c.cfg.Cache.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := cache.Clear(cmd.Context(), store); err != nil {
				return fmt.Errorf("clear %s cache: %w", backend, err)
			}
			printSuccess("Cleared %s cache", backend)
			if backend == config.BackendFile {
				printDetail("Directory: %s", c.cfg.Cache.Dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cfg.Cache.Dir)
			return nil
		},
	}
}
