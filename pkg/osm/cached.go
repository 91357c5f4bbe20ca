package osm

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kronpano/city-map-poster/pkg/cache"
	"github.com/kronpano/city-map-poster/pkg/geo"
	"github.com/kronpano/city-map-poster/pkg/observability"
)

// CachedSource wraps a Source with a cache. Cache failures are logged and
// never returned: the freshly fetched value is still used.
type CachedSource struct {
	src     Source
	cache   cache.Cache
	keyer   cache.Keyer
	logger  *log.Logger
	refresh bool
}

// NewCachedSource creates a cached source. A nil cache disables caching and
// a nil keyer uses [cache.DefaultKeyer].
func NewCachedSource(src Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *CachedSource {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedSource{src: src, cache: c, keyer: keyer, logger: logger}
}

// WithRefresh returns a copy that skips cache reads but still writes.
func (s *CachedSource) WithRefresh(refresh bool) *CachedSource {
	cp := *s
	cp.refresh = refresh
	return &cp
}

// Graph implements [Source].
func (s *CachedSource) Graph(ctx context.Context, center geo.Point, dist int) (*Graph, error) {
	key := s.keyer.GraphKey(center.Lat, center.Lon, dist)
	if data, ok := s.lookup(ctx, "graph", key); ok {
		g, err := DecodeGraph(data)
		if err == nil {
			s.logger.Info("using cached street network", "nodes", len(g.Nodes), "edges", len(g.Edges))
			return g, nil
		}
		s.logger.Warn("ignoring unreadable cache entry", "key", key, "err", err)
	}

	start := time.Now()
	observability.Pipeline().OnFetchStart(ctx, "graph")
	g, err := s.src.Graph(ctx, center, dist)
	count := 0
	if g != nil {
		count = len(g.Edges)
	}
	observability.Pipeline().OnFetchComplete(ctx, "graph", count, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if data, err := EncodeGraph(g); err != nil {
		s.logger.Warn("cache encode failed", "kind", "graph", "err", err)
	} else {
		s.store(ctx, "graph", key, data, cache.TTLGraph)
	}
	return g, nil
}

// Features implements [Source].
func (s *CachedSource) Features(ctx context.Context, center geo.Point, dist int, q FeatureQuery) ([]Feature, error) {
	key := s.keyer.FeatureKey(q.Name, center.Lat, center.Lon, dist, q.TagKeys())
	if data, ok := s.lookup(ctx, "features", key); ok {
		fs, err := DecodeFeatures(data)
		if err == nil {
			s.logger.Info("using cached features", "table", q.Name, "features", len(fs))
			return fs, nil
		}
		s.logger.Warn("ignoring unreadable cache entry", "key", key, "err", err)
	}

	start := time.Now()
	observability.Pipeline().OnFetchStart(ctx, q.Name)
	fs, err := s.src.Features(ctx, center, dist, q)
	observability.Pipeline().OnFetchComplete(ctx, q.Name, len(fs), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if data, err := EncodeFeatures(fs); err != nil {
		s.logger.Warn("cache encode failed", "kind", q.Name, "err", err)
	} else {
		s.store(ctx, "features", key, data, cache.TTLFeatures)
	}
	return fs, nil
}

func (s *CachedSource) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	if s.refresh {
		return nil, false
	}
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (s *CachedSource) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

var (
	_ Source = (*CachedSource)(nil)
	_ Source = (*OverpassFetcher)(nil)
)
