// Package config loads poster settings from an optional config file and
// POSTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kronpano/city-map-poster/pkg/buildinfo"
	"github.com/kronpano/city-map-poster/pkg/cache"
	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/project"
	"github.com/kronpano/city-map-poster/pkg/render/sink"
)

// AppName is used for the config and cache directories.
const AppName = buildinfo.Name

// EnvPrefix is the prefix of environment overrides:
// POSTER_CACHE_BACKEND -> cache.backend.
const EnvPrefix = "POSTER"

// Config holds all application configuration.
type Config struct {
	OutputDir   string          `mapstructure:"output_dir"`
	ThemesDir   string          `mapstructure:"themes_dir"`
	FontsDir    string          `mapstructure:"fonts_dir"`
	MetricsFile string          `mapstructure:"metrics_file"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Overpass    OverpassConfig  `mapstructure:"overpass"`
	Nominatim   NominatimConfig `mapstructure:"nominatim"`
	Render      RenderConfig    `mapstructure:"render"`
}

type CacheConfig struct {
	Backend       string `mapstructure:"backend"`
	Dir           string `mapstructure:"dir"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	ValkeyAddr    string `mapstructure:"valkey_addr"`
	Prefix        string `mapstructure:"prefix"`
}

type OverpassConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type NominatimConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RenderConfig holds defaults for the render command's flags.
type RenderConfig struct {
	Theme    string `mapstructure:"theme"`
	Formats  string `mapstructure:"formats"`
	Distance int    `mapstructure:"distance"`
	Aspect   string `mapstructure:"aspect"`
	Jobs     int    `mapstructure:"jobs"`
}

// Defaults.
const (
	DefaultOutputDir = "posters"
	DefaultTheme     = "feature_based"
	DefaultFormats   = "png"
	DefaultDistance  = 29000
	DefaultAspect    = "1:1"

	DefaultOverpassEndpoint  = "https://overpass-api.de/api/interpreter"
	DefaultNominatimEndpoint = "https://nominatim.openstreetmap.org"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("themes_dir", "themes")
	v.SetDefault("fonts_dir", "fonts")
	v.SetDefault("metrics_file", "")
	v.SetDefault("cache.backend", cache.BackendFile)
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.valkey_addr", "localhost:6379")
	v.SetDefault("cache.prefix", "poster:")
	v.SetDefault("overpass.endpoint", DefaultOverpassEndpoint)
	v.SetDefault("overpass.timeout", 3*time.Minute)
	v.SetDefault("nominatim.endpoint", DefaultNominatimEndpoint)
	v.SetDefault("nominatim.user_agent", buildinfo.UserAgent())
	v.SetDefault("nominatim.timeout", 10*time.Second)
	v.SetDefault("render.theme", DefaultTheme)
	v.SetDefault("render.formats", DefaultFormats)
	v.SetDefault("render.distance", DefaultDistance)
	v.SetDefault("render.aspect", DefaultAspect)
	v.SetDefault("render.jobs", 1)
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".cache", AppName)
	}
	return filepath.Join(dir, AppName)
}

// Load reads configuration. file may name an explicit config file; when
// empty, "poster.{yaml,toml,json}" is searched in the working directory
// and the user config directory, and a missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "read config %s", file)
		}
	} else {
		v.SetConfigName("poster")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "read config")
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with every default applied and no
// file or environment lookups.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that configuration fields are present and sane. All
// problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	switch c.Cache.Backend {
	case cache.BackendFile:
		if c.Cache.Dir == "" {
			errs = append(errs, "cache.dir is required for the file backend")
		}
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, "cache.redis_addr is required for the redis backend")
		}
	case cache.BackendValkey:
		if c.Cache.ValkeyAddr == "" {
			errs = append(errs, "cache.valkey_addr is required for the valkey backend")
		}
	case cache.BackendNone:
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be one of file, redis, valkey, none; got %q", c.Cache.Backend))
	}

	if err := validEndpoint(c.Overpass.Endpoint); err != nil {
		errs = append(errs, "overpass.endpoint: "+err.Error())
	}
	if err := validEndpoint(c.Nominatim.Endpoint); err != nil {
		errs = append(errs, "nominatim.endpoint: "+err.Error())
	}
	if c.Overpass.Timeout <= 0 {
		errs = append(errs, "overpass.timeout must be positive")
	}
	if c.Nominatim.Timeout <= 0 {
		errs = append(errs, "nominatim.timeout must be positive")
	}
	if strings.TrimSpace(c.Nominatim.UserAgent) == "" {
		errs = append(errs, "nominatim.user_agent is required")
	}
	if c.OutputDir == "" {
		errs = append(errs, "output_dir is required")
	}

	if c.Render.Jobs < 1 {
		errs = append(errs, fmt.Sprintf("render.jobs must be at least 1, got %d", c.Render.Jobs))
	}
	if err := perrors.ValidateDistance(c.Render.Distance); err != nil {
		errs = append(errs, "render.distance: "+perrors.UserMessage(err))
	}
	if _, err := project.ParseAspectRatio(c.Render.Aspect); err != nil {
		errs = append(errs, "render.aspect: "+perrors.UserMessage(err))
	}
	if _, err := sink.ParseFormats(c.Render.Formats); err != nil {
		errs = append(errs, "render.formats: "+perrors.UserMessage(err))
	}

	if len(errs) > 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validEndpoint(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) URL, got %q", s)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", s)
	}
	return nil
}
