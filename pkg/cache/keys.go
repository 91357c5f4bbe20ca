package cache

import (
	"fmt"
	"sort"
)

// Keyer generates cache keys for every kind of cached poster input.
// Implementations must be deterministic: equal parameters yield equal keys.
type Keyer interface {
	// GeocodeKey identifies the coordinates and region of a city.
	GeocodeKey(city, country string) string

	// RegionKey identifies only the administrative region of a city.
	RegionKey(city, country string) string

	// GraphKey identifies a street network fetched around a point.
	GraphKey(lat, lon float64, dist int) string

	// FeatureKey identifies a tagged feature table fetched around a point.
	FeatureKey(name string, lat, lon float64, dist int, tagKeys []string) string
}

// DefaultKeyer hashes the logical parameters of each request.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GeocodeKey returns "geocode:<hash>".
func (DefaultKeyer) GeocodeKey(city, country string) string {
	return hashKey("geocode", "coords", city, country)
}

// RegionKey returns "region:<hash>".
func (DefaultKeyer) RegionKey(city, country string) string {
	return hashKey("region", "province", city, country)
}

// GraphKey returns "graph:<hash>". Coordinates are rounded to 6 decimals
// (about 10 cm) so float formatting noise cannot split the cache.
func (DefaultKeyer) GraphKey(lat, lon float64, dist int) string {
	return hashKey("graph", roundCoord(lat), roundCoord(lon), dist)
}

// FeatureKey returns "features:<hash>". Tag keys are sorted first so the
// order in which a query lists them does not matter.
func (DefaultKeyer) FeatureKey(name string, lat, lon float64, dist int, tagKeys []string) string {
	keys := append([]string(nil), tagKeys...)
	sort.Strings(keys)
	return hashKey("features", name, roundCoord(lat), roundCoord(lon), dist, keys)
}

func roundCoord(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

var _ Keyer = DefaultKeyer{}
