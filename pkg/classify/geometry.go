package classify

import (
	"github.com/paulmach/orb"

	"github.com/kronpano/city-map-poster/pkg/osm"
)

// Kind is the drawing kind of a geometry.
type Kind int

const (
	KindOther Kind = iota
	KindPolygon
	KindLine
)

// KindOf reports whether g is drawn as a filled region or a stroked line.
// Points and collections are KindOther.
func KindOf(g orb.Geometry) Kind {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return KindPolygon
	case orb.LineString, orb.MultiLineString:
		return KindLine
	default:
		return KindOther
	}
}

// Polygonal returns the features whose geometry is a Polygon or MultiPolygon.
func Polygonal(features []osm.Feature) []osm.Feature {
	return filterKind(features, KindPolygon)
}

// Linear returns the features whose geometry is a LineString or MultiLineString.
func Linear(features []osm.Feature) []osm.Feature {
	return filterKind(features, KindLine)
}

func filterKind(features []osm.Feature, k Kind) []osm.Feature {
	var out []osm.Feature
	for _, f := range features {
		if KindOf(f.Geometry) == k {
			out = append(out, f)
		}
	}
	return out
}
