package cache

import (
	"strings"
	"unicode"
)

// ScopedKeyer wraps a Keyer with a prefix so that every key produced for
// one place lives in its own namespace.
//
// The scope is passed in explicitly by whoever builds a session rather than
// kept as process-wide state, so two sessions for different cities can run
// side by side:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cache.PlaceScope("Paris", "France"))
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PlaceScope builds the scope prefix for a city, e.g. "paris_france:".
func PlaceScope(city, country string) string {
	return Slug(city) + "_" + Slug(country) + ":"
}

// Slug lower-cases s and replaces every run of non letter/digit characters
// with a single underscore.
func Slug(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// GeocodeKey generates a prefixed geocoding key.
func (k *ScopedKeyer) GeocodeKey(city, country string) string {
	return k.prefix + k.inner.GeocodeKey(city, country)
}

// RegionKey generates a prefixed region key.
func (k *ScopedKeyer) RegionKey(city, country string) string {
	return k.prefix + k.inner.RegionKey(city, country)
}

// GraphKey generates a prefixed street network key.
func (k *ScopedKeyer) GraphKey(lat, lon float64, dist int) string {
	return k.prefix + k.inner.GraphKey(lat, lon, dist)
}

// FeatureKey generates a prefixed feature table key.
func (k *ScopedKeyer) FeatureKey(name string, lat, lon float64, dist int, tagKeys []string) string {
	return k.prefix + k.inner.FeatureKey(name, lat, lon, dist, tagKeys)
}
