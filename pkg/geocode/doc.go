// Package geocode resolves a city and country to coordinates and a region
// name using a Nominatim search endpoint.
//
// Requests are rate limited to one per second as required by the public
// Nominatim usage policy, retried on network errors and 5xx responses, and
// cached through [cache.Cache]. Both found coordinates and found regions
// are cached; a region lookup that finds nothing is cached as empty.
//
//	c := geocode.New(geocode.Options{Cache: fc, UserAgent: "my-app"})
//	place, err := c.Locate(ctx, "Paris", "France")
//
// [cache.Cache]: github.com/kronpano/city-map-poster/pkg/cache.Cache
package geocode
