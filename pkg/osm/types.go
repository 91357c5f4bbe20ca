package osm

import (
	"context"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"github.com/kronpano/city-map-poster/pkg/geo"
)

// Tags holds the OSM tags of an element.
type Tags map[string]string

// Edge is a street segment between two graph nodes. Geometry holds the full
// polyline when the street bends; a nil Geometry is a straight segment.
type Edge struct {
	ID       int64          `json:"id"`
	From     int64          `json:"from"`
	To       int64          `json:"to"`
	Tags     Tags           `json:"tags,omitempty"`
	Geometry orb.LineString `json:"geometry,omitempty"`
}

// Graph is a street network. Nodes holds every node position referenced
// by an edge.
type Graph struct {
	Nodes map[int64]orb.Point `json:"nodes"`
	Edges []Edge              `json:"edges"`
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[int64]orb.Point)}
}

// Empty reports whether the graph has no drawable edges.
func (g *Graph) Empty() bool {
	return g == nil || len(g.Edges) == 0
}

// Bound returns the extent of all nodes.
func (g *Graph) Bound() orb.Bound {
	first := true
	var b orb.Bound
	for _, p := range g.Nodes {
		if first {
			b = orb.Bound{Min: p, Max: p}
			first = false
			continue
		}
		b = b.Extend(p)
	}
	return b
}

// EdgeLine returns the polyline of e, falling back to the straight segment
// between its endpoints. It returns nil if an endpoint is unknown.
func (g *Graph) EdgeLine(e Edge) orb.LineString {
	if len(e.Geometry) >= 2 {
		return e.Geometry
	}
	from, ok1 := g.Nodes[e.From]
	to, ok2 := g.Nodes[e.To]
	if !ok1 || !ok2 {
		return nil
	}
	return orb.LineString{from, to}
}

// Feature is a tagged geometry, e.g. a lake or a railway line.
type Feature struct {
	// ID is the element reference, "way/123" or "relation/45".
	ID       string
	Tags     Tags
	Geometry orb.Geometry
}

// FeatureQuery selects a tagged feature table. Name is used in logs and
// cache keys.
type FeatureQuery struct {
	Name string
	// Tags maps a tag key to the accepted values. A feature matches if any
	// key has any of its values.
	Tags map[string][]string
	// Area makes closed ways polygons rather than rings of line.
	Area bool
}

// TagKeys returns the query's tag keys, sorted.
func (q FeatureQuery) TagKeys() []string {
	keys := make([]string, 0, len(q.Tags))
	for k := range q.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String describes the query, e.g. "water (natural=water, waterway=riverbank)".
func (q FeatureQuery) String() string {
	var parts []string
	for _, k := range q.TagKeys() {
		parts = append(parts, k+"="+strings.Join(q.Tags[k], "|"))
	}
	return q.Name + " (" + strings.Join(parts, ", ") + ")"
}

// Feature tables drawn on a poster.
var (
	WaterQuery = FeatureQuery{
		Name: "water",
		Tags: map[string][]string{"natural": {"water"}, "waterway": {"riverbank"}},
		Area: true,
	}
	ParksQuery = FeatureQuery{
		Name: "parks",
		Tags: map[string][]string{"leisure": {"park"}, "landuse": {"grass"}},
		Area: true,
	}
	RailQuery = FeatureQuery{
		Name: "railways",
		Tags: map[string][]string{"railway": {"rail", "subway", "light_rail"}},
	}
)

// Source fetches OSM data within dist metres of center.
type Source interface {
	// Graph returns the street network. An empty network is an error.
	Graph(ctx context.Context, center geo.Point, dist int) (*Graph, error)
	// Features returns the features matching q. An empty table is not an error.
	Features(ctx context.Context, center geo.Point, dist int, q FeatureQuery) ([]Feature, error)
}
