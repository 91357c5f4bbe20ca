// Package cache provides key/value persistence for expensive poster inputs.
//
// Fetching a street network or a feature table from Overpass, or geocoding a
// city through Nominatim, takes seconds to minutes. Results are stored under
// deterministic keys derived from the logical request parameters (see
// [Keyer]) so that repeated invocations for the same place reuse them.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory (the CLI default)
//   - [RedisCache]: a shared Redis server
//   - [ValkeyCache]: a shared Valkey server
//   - [NullCache]: caching disabled
//
// # Failure model
//
// Cache failures are never fatal. Callers log a warning and continue with
// the freshly computed value; only persistence is affected. There is no
// cross-process locking: two invocations asking for the same key may both
// recompute it, and the last writer wins.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true on a hit. A miss is reported as
	// (nil, false, nil); an error means the backend itself failed.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	// Clear deletes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Time-to-live values for each kind of cached data.
const (
	// TTLGeocode applies to geocoding results. Place coordinates rarely change.
	TTLGeocode = 90 * 24 * time.Hour

	// TTLGraph applies to fetched street networks.
	TTLGraph = 30 * 24 * time.Hour

	// TTLFeatures applies to fetched water, park and rail feature tables.
	TTLFeatures = 30 * 24 * time.Hour
)

// Backend names accepted by configuration.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendValkey = "valkey"
	BackendNone   = "none"
)
