package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kronpano/city-map-poster/pkg/cache"
	"github.com/kronpano/city-map-poster/pkg/fonts"
	"github.com/kronpano/city-map-poster/pkg/geo"
	"github.com/kronpano/city-map-poster/pkg/osm"
	"github.com/kronpano/city-map-poster/pkg/session"
	"github.com/kronpano/city-map-poster/pkg/theme"
)

// Geocoder resolves place names. [geocode.Client] implements it.
type Geocoder interface {
	Locate(ctx context.Context, city, country string) (geo.Place, error)
	Region(ctx context.Context, city, country string) (string, error)
}

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its dependencies: it doesn't store
// pipeline results, and multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	// Source fetches raw OSM data. The runner adds caching around it.
	Source   osm.Source
	Geocoder Geocoder
	Themes   *theme.Store
	Fonts    *fonts.Set
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil store uses
// only the built-in themes, and fonts default to [fonts.Default].
func NewRunner(src osm.Source, geocoder Geocoder, themes *theme.Store, c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if themes == nil {
		themes = theme.NewStore("")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source:   src,
		Geocoder: geocoder,
		Themes:   themes,
		Fonts:    fonts.Default(),
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		Logger:   logger,
	}
}

// Execute runs locate, session and render. emit is called once per
// successful output, serialized, in completion order; an emit error counts
// as a failure of that output.
//
// Errors before rendering (validation, geocoding, fetching) are returned
// directly. Render failures are collected in [Result.Failures] and do not
// stop the other renders; only cancellation aborts the batch.
func (r *Runner) Execute(ctx context.Context, opts Options, emit EmitFunc) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	themes, err := r.Themes.Resolve(opts.Theme)
	if err != nil {
		return nil, err
	}
	result := &Result{}

	// Stage 1: Locate
	start := time.Now()
	place, err := r.Locate(ctx, &opts)
	if err != nil {
		return nil, err
	}
	result.Place = place
	result.Stats.LocateTime = time.Since(start)

	// Stage 2: Session
	start = time.Now()
	s, err := r.BuildSession(ctx, place, &opts)
	if err != nil {
		return nil, err
	}
	result.SessionID = s.ID()
	result.Stats.SessionTime = time.Since(start)
	result.Stats.Edges = len(s.Graph().Edges)

	// Stage 3: Render
	start = time.Now()
	result.Outputs, result.Failures, err = r.RenderAll(ctx, s, themes, &opts, emit)
	result.Stats.RenderTime = time.Since(start)
	if err != nil {
		return result, err
	}

	r.logger(&opts).Info("pipeline complete",
		"outputs", len(result.Outputs),
		"failures", len(result.Failures),
		"duration", (result.Stats.LocateTime + result.Stats.SessionTime + result.Stats.RenderTime).Round(time.Millisecond))
	return result, nil
}

// Locate resolves the poster location. With explicit coordinates only the
// region is looked up, and a failed lookup leaves it empty.
func (r *Runner) Locate(ctx context.Context, opts *Options) (geo.Place, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return geo.Place{}, err
	}
	if r.Geocoder == nil && !opts.HasCoordinates() {
		return geo.Place{}, fmt.Errorf("pipeline: no geocoder configured")
	}

	if opts.HasCoordinates() {
		place := geo.Place{
			City:    opts.City,
			Country: opts.Country,
			Point:   geo.Point{Lat: *opts.Lat, Lon: *opts.Lon},
		}
		r.logger(opts).Info("using explicit coordinates", "point", place.Point.String())
		if r.Geocoder != nil {
			region, err := r.Geocoder.Region(ctx, opts.City, opts.Country)
			if err != nil {
				if ctx.Err() != nil {
					return geo.Place{}, ctx.Err()
				}
				r.logger(opts).Warn("region lookup failed", "city", opts.City, "err", err)
			}
			place.Region = region
		}
		return place, nil
	}

	place, err := r.Geocoder.Locate(ctx, opts.City, opts.Country)
	if err != nil {
		return geo.Place{}, err
	}
	r.logger(opts).Info("located city", "city", place.City, "country", place.Country, "point", place.Point.String(), "region", place.Region)
	return place, nil
}

// BuildSession fetches and prepares the map data for place. OSM queries are
// cached under the place's scope unless opts.Refresh is set.
func (r *Runner) BuildSession(ctx context.Context, place geo.Place, opts *Options) (*session.Session, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	keyer := r.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	src := osm.NewCachedSource(
		r.Source,
		r.Cache,
		cache.NewScopedKeyer(keyer, cache.PlaceScope(place.City, place.Country)),
		r.logger(opts),
	).WithRefresh(opts.Refresh)

	return session.Build(ctx, src, session.Request{
		Place:    place,
		Distance: opts.Distance,
		Shift:    opts.ParsedShift(),
		Aspect:   opts.ParsedAspect(),
	}, r.logger(opts))
}

// logger returns the run's logger: opts.Logger if set, else r.Logger.
func (r *Runner) logger(opts *Options) *log.Logger {
	if opts != nil && opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
