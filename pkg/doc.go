// Package pkg provides the core libraries for city map poster generation.
//
// # Overview
//
// A poster is built from OpenStreetMap data around a geocoded point. The pkg
// directory is organized into four main areas:
//
//  1. Acquisition - [geocode] and [osm] fetch coordinates and geometry
//  2. Geometry - [geo], [project], [classify] and [session] turn raw data
//     into an immutable, cropped planar bundle
//  3. Rendering - [theme], [fonts], [layers] and [render/sink] compose and
//     serialize the poster
//  4. Orchestration - [pipeline] ties the stages together for the CLI
//
// # Architecture
//
// The typical data flow through one invocation:
//
//	City, Country
//	     ↓
//	[geocode] package (Nominatim lookup, cached)
//	     ↓
//	[osm] package (Overpass street graph + feature tables, cached)
//	     ↓
//	[session] package (project, classify, crop; built once)
//	     ↓
//	[layers] package (compose per theme and DPI)
//	     ↓
//	[render/sink] package (PNG/SVG/PDF/JSON output)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(
//	    osm.NewOverpassFetcher(osm.OverpassOptions{}),
//	    geocode.New(geocode.Options{}),
//	    theme.NewStore(""),
//	    nil,
//	    logger,
//	)
//	defer runner.Close()
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    City:    "Paris",
//	    Country: "France",
//	    Theme:   "noir,forest",
//	}, func(out pipeline.Output) error {
//	    return os.WriteFile(out.Theme+"."+out.Format.Ext(), out.Data, 0o644)
//	})
//
// # Supporting Packages
//
// [cache] - Byte caches keyed by request parameters. File, Redis and Valkey
// backends share one interface; failures are logged and never fatal.
//
// [config] - Layered configuration from file, environment and defaults.
//
// [errors] - Coded errors with user-facing messages and input validation.
//
// [observability] - Hook interfaces for fetch, cache and render events with
// a Prometheus implementation.
//
// [buildinfo] - Version metadata injected at link time.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/session/...  # Specific package
//
// [geocode]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/geocode
// [osm]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/osm
// [geo]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/geo
// [project]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/project
// [classify]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/classify
// [session]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/session
// [theme]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/theme
// [fonts]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/fonts
// [layers]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/layers
// [render/sink]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/cache
// [config]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/config
// [errors]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/errors
// [observability]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/kronpano/city-map-poster/pkg/buildinfo
package pkg
