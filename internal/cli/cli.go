package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kronpano/city-map-poster/pkg/buildinfo"
	"github.com/kronpano/city-map-poster/pkg/cache"
	"github.com/kronpano/city-map-poster/pkg/config"
	"github.com/kronpano/city-map-poster/pkg/fonts"
	"github.com/kronpano/city-map-poster/pkg/geocode"
	"github.com/kronpano/city-map-poster/pkg/observability"
	"github.com/kronpano/city-map-poster/pkg/osm"
	"github.com/kronpano/city-map-poster/pkg/pipeline"
	"github.com/kronpano/city-map-poster/pkg/theme"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// cacheConnectTimeout bounds the initial PING to a remote cache.
	cacheConnectTimeout = 5 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	cfg        *config.Config
	metrics    *observability.PrometheusHooks
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "poster",
		Short: "Generate minimalist map posters of any city",
		Long: `poster renders a city's street network, water, parks and railways from
OpenStreetMap into a styled poster. One fetch can be rendered in many themes
and formats.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: poster.yaml in . or the user config dir)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.themesCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// config returns the loaded configuration, or the defaults if a command
// runs without the root pre-run (as in tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner wired to the configured services.
func (c *CLI) newRunner(ctx context.Context, noCache, refresh bool) (*pipeline.Runner, error) {
	cfg := c.config()
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	fetcher := osm.NewOverpassFetcher(osm.OverpassOptions{
		Endpoint: cfg.Overpass.Endpoint,
		Timeout:  cfg.Overpass.Timeout,
		Logger:   c.Logger,
	})
	geocoder := geocode.New(geocode.Options{
		Endpoint:  cfg.Nominatim.Endpoint,
		UserAgent: cfg.Nominatim.UserAgent,
		Timeout:   cfg.Nominatim.Timeout,
		Cache:     store,
		Refresh:   refresh,
		Logger:    c.Logger,
	})

	r := pipeline.NewRunner(fetcher, geocoder, theme.NewStore(cfg.ThemesDir), store, c.Logger)
	r.Fonts = fonts.Discover(cfg.FontsDir)
	return r, nil
}

// newCache opens the configured cache backend. A remote backend that cannot
// be reached degrades to no caching with a warning.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config().Cache
	if noCache {
		return cache.NewNullCache(), nil
	}

	switch cfg.Backend {
	case cache.BackendNone:
		return cache.NewNullCache(), nil
	case cache.BackendRedis:
		ctx, cancel := context.WithTimeout(ctx, cacheConnectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Backend, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	case cache.BackendValkey:
		vc, err := cache.NewValkeyCache(cfg.ValkeyAddr, cfg.Prefix)
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Backend, "err", err)
			return cache.NewNullCache(), nil
		}
		return vc, nil
	case cache.BackendFile:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without it", "dir", cfg.Dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// =============================================================================
// Metrics
// =============================================================================

// enableMetrics installs Prometheus hooks for the rest of the process.
func (c *CLI) enableMetrics() {
	if c.metrics != nil {
		return
	}
	c.metrics = observability.NewPrometheusHooks()
	observability.SetPipelineHooks(c.metrics)
	observability.SetCacheHooks(c.metrics)
	observability.SetHTTPHooks(c.metrics)
}

// writeMetrics writes collected metrics in the textfile collector format.
func (c *CLI) writeMetrics(path string) {
	if c.metrics == nil || path == "" {
		return
	}
	if err := c.metrics.WriteTextfile(path); err != nil {
		c.Logger.Warn("write metrics failed", "path", path, "err", err)
		return
	}
	c.Logger.Debug("wrote metrics", "path", path)
}
