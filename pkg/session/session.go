// Package session builds the immutable geometry bundle behind a poster.
//
// A [Session] is the expensive result of one invocation: the street graph
// and feature tables fetched around a point, projected into the planar CRS,
// classified, and cropped to the requested aspect ratio. It is built once by
// [Build] and then shared read-only by every theme and format rendered for
// that invocation.
//
// Construction is all or nothing. If geocoding has already happened and any
// fetch fails, or the street graph is degenerate, Build returns an error
// and no session.
//
//	s, err := session.Build(ctx, src, session.Request{
//	    Place:    place,
//	    Distance: 29000,
//	    Aspect:   project.AspectRatio{W: 3, H: 4},
//	}, logger)
package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/kronpano/city-map-poster/pkg/classify"
	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/geo"
	"github.com/kronpano/city-map-poster/pkg/observability"
	"github.com/kronpano/city-map-poster/pkg/osm"
	"github.com/kronpano/city-map-poster/pkg/project"
)

// Request holds the parameters of a session.
type Request struct {
	// Place is the geocoded location. Its point is the unshifted center.
	Place geo.Place
	// Distance is the fetch radius in metres.
	Distance int
	Shift    geo.Shift
	Aspect   project.AspectRatio
}

// Validate checks every parameter before any fetch starts.
func (r Request) Validate() error {
	if err := perrors.ValidatePlaceName("city", r.Place.City); err != nil {
		return err
	}
	if err := perrors.ValidatePlaceName("country", r.Place.Country); err != nil {
		return err
	}
	if err := r.Place.Point.Validate(); err != nil {
		return err
	}
	if err := perrors.ValidateDistance(r.Distance); err != nil {
		return err
	}
	return r.Aspect.Validate()
}

// Session is the projected, cropped geometry of one poster location.
// All slices are shared between renders and must not be modified.
type Session struct {
	id        string
	createdAt time.Time
	place     geo.Place
	distance  int
	shift     geo.Shift
	aspect    project.AspectRatio

	graph  *osm.Graph
	water  []osm.Feature
	parks  []osm.Feature
	rail   []osm.Feature
	subway []osm.Feature
	crop   project.Window
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns the time the session finished building.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Place returns the location with the shifted center point.
func (s *Session) Place() geo.Place { return s.place }

// Distance returns the fetch radius in metres.
func (s *Session) Distance() int { return s.distance }

// Shift returns the applied center shift.
func (s *Session) Shift() geo.Shift { return s.shift }

// Aspect returns the requested canvas aspect ratio.
func (s *Session) Aspect() project.AspectRatio { return s.aspect }

// Graph returns the planar street graph.
func (s *Session) Graph() *osm.Graph { return s.graph }

// Water returns planar water polygons; nil if there are none.
func (s *Session) Water() []osm.Feature { return s.water }

// Parks returns planar park polygons; nil if there are none.
func (s *Session) Parks() []osm.Feature { return s.parks }

// Rail returns planar normal rail lines; nil if there are none.
func (s *Session) Rail() []osm.Feature { return s.rail }

// Subway returns planar subway and light rail lines; nil if there are none.
func (s *Session) Subway() []osm.Feature { return s.subway }

// Crop returns the aspect-correct crop window in planar units.
func (s *Session) Crop() project.Window { return s.crop }

// Build fetches, classifies and projects all poster data for req.
func Build(ctx context.Context, src osm.Source, req Request, logger *log.Logger) (_ *Session, err error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		observability.Pipeline().OnSessionComplete(ctx, req.Place.City+", "+req.Place.Country, time.Since(start), err)
	}()

	place := req.Place
	place.Point = req.Shift.Apply(req.Place.Point)
	if !req.Shift.IsZero() {
		if err := place.Point.Validate(); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidShift, err, "shift %s moves the center out of range", req.Shift.Spec)
		}
		logger.Info("shifted center", "shift", req.Shift.Spec, "from", req.Place.Point.String(), "to", place.Point.String())
	}

	graph, err := src.Graph(ctx, place.Point, req.Distance)
	if err != nil {
		return nil, err
	}
	if graph.Empty() {
		return nil, perrors.New(perrors.ErrCodeAcquisition, "no street network data for %s", place.City)
	}
	tables := map[string][]osm.Feature{}
	for _, q := range []osm.FeatureQuery{osm.WaterQuery, osm.ParksQuery, osm.RailQuery} {
		fs, err := src.Features(ctx, place.Point, req.Distance, q)
		if err != nil {
			return nil, err
		}
		tables[q.Name] = fs
		logger.Debug("fetched features", "table", q.Name, "features", len(fs))
	}

	planar := projectGraph(graph)
	crop, err := project.SolveCrop(project.WindowFromBound(planar.Bound()), req.Aspect.Value())
	if err != nil {
		return nil, err
	}

	normal, subway := classify.PartitionRail(tables[osm.RailQuery.Name])
	s := &Session{
		id:       uuid.NewString(),
		place:    place,
		distance: req.Distance,
		shift:    req.Shift,
		aspect:   req.Aspect,
		graph:    planar,
		water:    projectFeatures(classify.Polygonal(tables[osm.WaterQuery.Name])),
		parks:    projectFeatures(classify.Polygonal(tables[osm.ParksQuery.Name])),
		rail:     projectFeatures(normal),
		subway:   projectFeatures(subway),
		crop:     crop,
	}
	s.createdAt = time.Now()

	logger.Info("session ready",
		"id", s.id,
		"edges", len(planar.Edges),
		"water", len(s.water),
		"parks", len(s.parks),
		"rail", len(s.rail),
		"subway", len(s.subway),
		"duration", time.Since(start).Round(time.Millisecond))
	return s, nil
}

func projectGraph(g *osm.Graph) *osm.Graph {
	out := &osm.Graph{
		Nodes: make(map[int64]orb.Point, len(g.Nodes)),
		Edges: make([]osm.Edge, len(g.Edges)),
	}
	for id, p := range g.Nodes {
		out.Nodes[id] = project.PointToPlanar(p)
	}
	for i, e := range g.Edges {
		if len(e.Geometry) > 0 {
			e.Geometry = project.ToPlanar(e.Geometry).(orb.LineString)
		}
		out.Edges[i] = e
	}
	return out
}

// projectFeatures returns planar copies. An empty table becomes nil so that
// absent and empty layers look the same to callers.
func projectFeatures(fs []osm.Feature) []osm.Feature {
	if len(fs) == 0 {
		return nil
	}
	out := make([]osm.Feature, len(fs))
	for i, f := range fs {
		out[i] = osm.Feature{ID: f.ID, Tags: f.Tags, Geometry: project.ToPlanar(f.Geometry)}
	}
	return out
}

// New assembles a session from already planar data. It is meant for tests
// and tools that load geometry from elsewhere; the crop is solved from the
// graph extent as in Build.
func New(place geo.Place, aspect project.AspectRatio, graph *osm.Graph, water, parks, railFeatures []osm.Feature) (*Session, error) {
	if err := aspect.Validate(); err != nil {
		return nil, err
	}
	if graph.Empty() {
		return nil, perrors.New(perrors.ErrCodeAcquisition, "empty street graph")
	}
	crop, err := project.SolveCrop(project.WindowFromBound(graph.Bound()), aspect.Value())
	if err != nil {
		return nil, err
	}
	normal, subway := classify.PartitionRail(railFeatures)
	return &Session{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		place:     place,
		aspect:    aspect,
		graph:     graph,
		water:     nilIfEmpty(classify.Polygonal(water)),
		parks:     nilIfEmpty(classify.Polygonal(parks)),
		rail:      nilIfEmpty(normal),
		subway:    nilIfEmpty(subway),
		crop:      crop,
	}, nil
}

func nilIfEmpty(fs []osm.Feature) []osm.Feature {
	if len(fs) == 0 {
		return nil
	}
	return fs
}
