package layers

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/kronpano/city-map-poster/pkg/classify"
	"github.com/kronpano/city-map-poster/pkg/osm"
	"github.com/kronpano/city-map-poster/pkg/session"
	"github.com/kronpano/city-map-poster/pkg/theme"
)

// Kind tells emitters whether a layer is filled or stroked.
type Kind int

const (
	Fill Kind = iota
	Stroke
)

func (k Kind) String() string {
	if k == Stroke {
		return "stroke"
	}
	return "fill"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "fill":
		*k = Fill
	case "stroke":
		*k = Stroke
	default:
		return fmt.Errorf("unknown layer kind %q", b)
	}
	return nil
}

// Path is one drawable feature part. For fill layers Points is a closed
// exterior ring.
type Path struct {
	ID     string      `json:"id"`
	Points []orb.Point `json:"points"`
}

// Layer is a named group of paths sharing presentation attributes.
type Layer struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Color string `json:"color"`
	// Width is the stroke width in points; zero for fill layers.
	Width float64 `json:"width,omitempty"`
	Paths []Path  `json:"paths"`
}

// Build classifies the session's geometry into ordered layers in planar
// coordinates. Colors come from th; the session is not modified.
func Build(s *session.Session, th theme.Theme) []Layer {
	var out []Layer
	add := func(l Layer) {
		if len(l.Paths) > 0 {
			out = append(out, l)
		}
	}

	add(polygonLayer("water", th.Color(theme.RoleWater), s.Water()))
	add(polygonLayer("parks", th.Color(theme.RoleParks), s.Parks()))
	for _, l := range roadLayers(s.Graph(), th) {
		add(l)
	}
	rail := classify.NormalRail.Style()
	add(lineLayer(classify.NormalRail.String(), th.Color(rail.Role), rail.Width, s.Rail()))
	subway := classify.SubwayRail.Style()
	add(lineLayer(classify.SubwayRail.String(), theme.SubwayColor, subway.Width, s.Subway()))
	return out
}

// polygonLayer emits one path per polygon exterior ring. Holes are not
// subtracted.
func polygonLayer(id, color string, features []osm.Feature) Layer {
	l := Layer{ID: id, Kind: Fill, Color: color}
	for i, f := range features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) > 0 && len(g[0]) > 0 {
				l.Paths = append(l.Paths, Path{ID: fmt.Sprintf("%s-%d", id, i), Points: g[0]})
			}
		case orb.MultiPolygon:
			for j, poly := range g {
				if len(poly) > 0 && len(poly[0]) > 0 {
					l.Paths = append(l.Paths, Path{ID: fmt.Sprintf("%s-%d-%d", id, i, j), Points: poly[0]})
				}
			}
		}
	}
	return l
}

// lineLayer emits one path per line, or per part of a MultiLineString.
func lineLayer(id, color string, width float64, features []osm.Feature) Layer {
	l := Layer{ID: id, Kind: Stroke, Color: color, Width: width}
	for i, f := range features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			if len(g) >= 2 {
				l.Paths = append(l.Paths, Path{ID: fmt.Sprintf("%s-%d", id, i), Points: g})
			}
		case orb.MultiLineString:
			for j, ls := range g {
				if len(ls) >= 2 {
					l.Paths = append(l.Paths, Path{ID: fmt.Sprintf("%s-%d-%d", id, i, j), Points: ls})
				}
			}
		}
	}
	return l
}

// roadLayers returns one layer per tier in drawing order, including empty
// ones. Path ids use the edge's index in the graph.
func roadLayers(g *osm.Graph, th theme.Theme) []Layer {
	out := make([]Layer, len(classify.Tiers))
	for i, tier := range classify.Tiers {
		st := tier.Style()
		out[i] = Layer{ID: "roads-" + tier.String(), Kind: Stroke, Color: th.Color(st.Role), Width: st.Width}
	}
	if g == nil {
		return out
	}
	for i, e := range g.Edges {
		line := g.EdgeLine(e)
		if len(line) < 2 {
			continue
		}
		tier := classify.ClassifyHighway(e.Tags["highway"])
		l := &out[tier]
		l.Paths = append(l.Paths, Path{ID: fmt.Sprintf("%s-%d", l.ID, i), Points: line})
	}
	return out
}

// Counts returns the number of paths per layer id.
func Counts(ls []Layer) map[string]int {
	m := make(map[string]int, len(ls))
	for _, l := range ls {
		m[l.ID] = len(l.Paths)
	}
	return m
}
