// Package osm acquires OpenStreetMap data around a point.
//
// A [Source] returns two kinds of data: the street network as a [Graph]
// and tagged feature tables ([Feature] slices) selected by a
// [FeatureQuery]. Geometry is in WGS-84 as orb types with (lon, lat) point
// order; projection into a planar CRS happens later, in package session.
//
// [OverpassFetcher] queries an Overpass API endpoint. [CachedSource] wraps
// any Source with a [cache.Cache], storing graphs as JSON and feature tables
// as GeoJSON feature collections.
//
//	src := osm.NewCachedSource(osm.NewOverpassFetcher(osm.OverpassOptions{}), c, keyer, logger)
//	g, err := src.Graph(ctx, center, 29000)
//	water, err := src.Features(ctx, center, 29000, osm.WaterQuery)
//
// [cache.Cache]: github.com/kronpano/city-map-poster/pkg/cache.Cache
package osm
