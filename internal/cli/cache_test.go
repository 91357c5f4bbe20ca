package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/kronpano/city-map-poster/pkg/cache"
	"github.com/kronpano/city-map-poster/pkg/config"
)

func TestCacheLocation(t *testing.T) {
	tests := []struct {
		cfg  config.CacheConfig
		want string
	}{
		{config.CacheConfig{Backend: cache.BackendFile, Dir: "/tmp/posters"}, "/tmp/posters"},
		{config.CacheConfig{Backend: cache.BackendRedis, RedisAddr: "localhost:6379", RedisDB: 2, Prefix: "poster:"}, "redis://localhost:6379/2 poster:*"},
		{config.CacheConfig{Backend: cache.BackendValkey, ValkeyAddr: "cache:6379", Prefix: "p:"}, "valkey://cache:6379 p:*"},
		{config.CacheConfig{Backend: cache.BackendNone}, "none"},
	}
	for _, tt := range tests {
		if got := cacheLocation(tt.cfg); got != tt.want {
			t.Errorf("cacheLocation(%s) = %q, want %q", tt.cfg.Backend, got, tt.want)
		}
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.cfg = config.Default()
		c.cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")

		store, err := c.newCache(ctx, false)
		if err != nil {
			t.Fatalf("newCache: %v", err)
		}
		if _, ok := store.(*cache.FileCache); !ok {
			t.Errorf("newCache() = %T, want *cache.FileCache", store)
		}
	})

	t.Run("no-cache flag wins", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.cfg = config.Default()
		store, err := c.newCache(ctx, true)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := store.(cache.NullCache); !ok {
			t.Errorf("newCache(noCache) = %T, want cache.NullCache", store)
		}
	})

	t.Run("none backend", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.cfg = config.Default()
		c.cfg.Cache.Backend = cache.BackendNone
		store, err := c.newCache(ctx, false)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := store.(cache.NullCache); !ok {
			t.Errorf("newCache(none) = %T, want cache.NullCache", store)
		}
	})
}
