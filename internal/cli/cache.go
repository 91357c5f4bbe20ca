package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kronpano/city-map-poster/pkg/cache"
	"github.com/kronpano/city-map-poster/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the map data cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached geocoding results and map data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config().Cache
			if cfg.Backend == cache.BackendNone {
				printInfo("Caching is disabled")
				return nil
			}

			store, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printWarning("The %s cache is not reachable", cfg.Backend)
				return nil
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Clearing cache...")
			spinner.Start()
			n, err := clearer.Clear(cmd.Context())
			spinner.Stop()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("Location: %s", cacheLocation(c.config().Cache))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(cacheLocation(c.config().Cache))
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// cache, otherwise backend://address/prefix.
func cacheLocation(cfg config.CacheConfig) string {
	switch cfg.Backend {
	case cache.BackendFile:
		return cfg.Dir
	case cache.BackendRedis:
		return fmt.Sprintf("redis://%s/%d %s*", cfg.RedisAddr, cfg.RedisDB, cfg.Prefix)
	case cache.BackendValkey:
		return fmt.Sprintf("valkey://%s %s*", cfg.ValkeyAddr, cfg.Prefix)
	default:
		return cfg.Backend
	}
}
