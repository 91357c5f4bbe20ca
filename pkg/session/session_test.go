package session

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/geo"
	"github.com/kronpano/city-map-poster/pkg/osm"
	"github.com/kronpano/city-map-poster/pkg/project"
)

type fakeSource struct {
	graph    *osm.Graph
	features map[string][]osm.Feature
	failOn   string
	calls    int
	centers  []geo.Point
}

func (f *fakeSource) Graph(_ context.Context, c geo.Point, _ int) (*osm.Graph, error) {
	f.calls++
	f.centers = append(f.centers, c)
	if f.failOn == "graph" {
		return nil, perrors.New(perrors.ErrCodeAcquisition, "graph unavailable")
	}
	return f.graph, nil
}

func (f *fakeSource) Features(_ context.Context, _ geo.Point, _ int, q osm.FeatureQuery) ([]osm.Feature, error) {
	f.calls++
	if f.failOn == q.Name {
		return nil, perrors.New(perrors.ErrCodeAcquisition, "%s unavailable", q.Name)
	}
	return f.features[q.Name], nil
}

func square(x, y, d float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + d, y}, {x + d, y + d}, {x, y + d}, {x, y}}}
}

func newFake() *fakeSource {
	g := osm.NewGraph()
	g.Nodes[1] = orb.Point{2.30, 48.80}
	g.Nodes[2] = orb.Point{2.40, 48.90}
	g.Edges = []osm.Edge{{ID: 1, From: 1, To: 2, Tags: osm.Tags{"highway": "motorway"}}}
	return &fakeSource{
		graph: g,
		features: map[string][]osm.Feature{
			"water": {
				{ID: "way/1", Geometry: square(2.31, 48.81, 0.01)},
				{ID: "node/2", Geometry: orb.Point{2.32, 48.82}},
			},
			"railways": {
				{ID: "way/3", Tags: osm.Tags{"railway": "subway"}, Geometry: orb.LineString{{2.3, 48.8}, {2.4, 48.9}}},
				{ID: "way/4", Tags: osm.Tags{"railway": "rail"}, Geometry: orb.LineString{{2.3, 48.9}, {2.4, 48.8}}},
				{ID: "way/5", Tags: osm.Tags{"railway": "rail"}, Geometry: square(2.3, 48.8, 0.01)},
			},
		},
	}
}

func request() Request {
	return Request{
		Place:    geo.Place{City: "Paris", Country: "France", Point: geo.Point{Lat: 48.85, Lon: 2.35}},
		Distance: 5000,
		Aspect:   project.AspectRatio{W: 3, H: 4},
	}
}

func TestBuild(t *testing.T) {
	src := newFake()
	s, err := Build(context.Background(), src, request(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if s.ID() == "" || s.CreatedAt().IsZero() {
		t.Error("session should have an id and creation time")
	}
	if got := len(s.Water()); got != 1 {
		t.Errorf("water = %d features, want 1 (point dropped)", got)
	}
	if s.Parks() != nil {
		t.Errorf("parks = %v, want nil for an empty table", s.Parks())
	}
	if len(s.Rail()) != 1 || len(s.Subway()) != 1 {
		t.Errorf("rail/subway = %d/%d, want 1/1", len(s.Rail()), len(s.Subway()))
	}
	if s.Subway()[0].ID != "way/3" || s.Rail()[0].ID != "way/4" {
		t.Errorf("rail partition wrong: rail %s, subway %s", s.Rail()[0].ID, s.Subway()[0].ID)
	}

	// Graph is planar: Mercator metres, not degrees.
	if p := s.Graph().Nodes[1]; p.X() < 1e5 {
		t.Errorf("graph node = %v, want planar coordinates", p)
	}
	if src.graph.Nodes[1] != (orb.Point{2.30, 48.80}) {
		t.Error("Build modified the source graph")
	}

	crop := s.Crop()
	if math.Abs(crop.Aspect()-0.75) > 1e-9 {
		t.Errorf("crop aspect = %v, want 0.75", crop.Aspect())
	}
}

func TestBuildAppliesShift(t *testing.T) {
	src := newFake()
	req := request()
	req.Shift, _ = geo.ParseShift("5n")

	s, err := Build(context.Background(), src, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Place().Point.Lat <= req.Place.Point.Lat {
		t.Errorf("shifted center %v should be north of %v", s.Place().Point, req.Place.Point)
	}
	if src.centers[0] != s.Place().Point {
		t.Errorf("fetch center = %v, want shifted %v", src.centers[0], s.Place().Point)
	}
}

func TestBuildShiftAcrossAntimeridian(t *testing.T) {
	src := newFake()
	req := request()
	req.Place.Point = geo.Point{Lat: 0, Lon: 179.99}
	req.Shift, _ = geo.ParseShift("10e")

	s, err := Build(context.Background(), src, req, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	center := s.Place().Point
	if err := center.Validate(); err != nil {
		t.Errorf("shifted center %v is invalid: %v", center, err)
	}
	if center.Lon > -179.9 {
		t.Errorf("shifted center lon = %v, want wrapped past -180", center.Lon)
	}
	if src.centers[0] != center {
		t.Errorf("fetch center = %v, want %v", src.centers[0], center)
	}
}

func TestBuildFailsWhole(t *testing.T) {
	for _, step := range []string{"graph", "water", "parks", "railways"} {
		t.Run(step, func(t *testing.T) {
			src := newFake()
			src.failOn = step
			s, err := Build(context.Background(), src, request(), nil)
			if s != nil {
				t.Error("Build should not return a partial session")
			}
			if !perrors.Is(err, perrors.ErrCodeAcquisition) {
				t.Errorf("Build() error = %v, want ACQUISITION_FAILED", err)
			}
		})
	}
}

func TestBuildDegenerateGraph(t *testing.T) {
	src := newFake()
	src.graph.Nodes[2] = orb.Point{2.40, 48.80} // same latitude: zero height
	_, err := Build(context.Background(), src, request(), nil)
	if !perrors.Is(err, perrors.ErrCodeDegenerate) {
		t.Errorf("Build() error = %v, want DEGENERATE_GEOMETRY", err)
	}
}

func TestBuildValidatesFirst(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
	}{
		{"empty city", func(r *Request) { r.Place.City = "" }},
		{"bad latitude", func(r *Request) { r.Place.Point.Lat = 91 }},
		{"zero distance", func(r *Request) { r.Distance = 0 }},
		{"bad aspect", func(r *Request) { r.Aspect = project.AspectRatio{W: 0, H: 1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFake()
			req := request()
			tt.modify(&req)
			_, err := Build(context.Background(), src, req, nil)
			if !perrors.IsInput(err) {
				t.Errorf("Build() error = %v, want input error", err)
			}
			if src.calls != 0 {
				t.Errorf("source called %d times before validation failed", src.calls)
			}
		})
	}
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &cancelSource{}
	_, err := Build(ctx, src, request(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

type cancelSource struct{}

func (cancelSource) Graph(ctx context.Context, _ geo.Point, _ int) (*osm.Graph, error) {
	return nil, ctx.Err()
}

func (cancelSource) Features(ctx context.Context, _ geo.Point, _ int, _ osm.FeatureQuery) ([]osm.Feature, error) {
	return nil, ctx.Err()
}

func TestNew(t *testing.T) {
	g := osm.NewGraph()
	g.Nodes[1] = orb.Point{0, 0}
	g.Nodes[2] = orb.Point{200, 100}
	g.Edges = []osm.Edge{{From: 1, To: 2}}

	s, err := New(geo.Place{City: "X", Country: "Y"}, project.AspectRatio{W: 1, H: 1}, g, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := project.Window{X: project.Range{Min: 50, Max: 150}, Y: project.Range{Min: 0, Max: 100}}
	if s.Crop() != want {
		t.Errorf("Crop() = %+v, want %+v", s.Crop(), want)
	}
}
