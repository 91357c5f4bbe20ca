package osm

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/serjvanilla/go-overpass"

	"github.com/kronpano/city-map-poster/pkg/cache"
	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/geo"
	"github.com/kronpano/city-map-poster/pkg/observability"
)

// DefaultOverpassEndpoint is the public Overpass API interpreter.
const DefaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"

// OverpassOptions configures [NewOverpassFetcher].
type OverpassOptions struct {
	// Endpoint defaults to DefaultOverpassEndpoint.
	Endpoint string
	// Timeout bounds each request and is sent as the server-side query
	// timeout. Defaults to 3 minutes.
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// OverpassFetcher is a [Source] backed by the Overpass API.
type OverpassFetcher struct {
	client  *overpass.Client
	timeout time.Duration
	logger  *log.Logger
}

// NewOverpassFetcher creates a fetcher. Requests are limited to two in flight.
func NewOverpassFetcher(opts OverpassOptions) *OverpassFetcher {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultOverpassEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Minute
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   opts.Timeout,
			Transport: observability.Transport(nil),
		}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	client := overpass.NewWithSettings(opts.Endpoint, 2, httpClient)
	return &OverpassFetcher{client: &client, timeout: opts.Timeout, logger: opts.Logger}
}

// Graph fetches every way tagged highway inside the bounding box.
func (f *OverpassFetcher) Graph(ctx context.Context, center geo.Point, dist int) (*Graph, error) {
	q := f.header() + fmt.Sprintf("way[\"highway\"](%s);\nout body;\n>;\nout skel qt;", bboxFilter(center, dist))
	res, err := f.query(ctx, "graph", q)
	if err != nil {
		return nil, err
	}
	g := graphFromResult(res)
	if g.Empty() {
		return nil, perrors.New(perrors.ErrCodeAcquisition, "no street network found within %d m of %s", dist, center)
	}
	return g, nil
}

// Features fetches the ways and multipolygon relations matching q.
func (f *OverpassFetcher) Features(ctx context.Context, center geo.Point, dist int, q FeatureQuery) ([]Feature, error) {
	res, err := f.query(ctx, q.Name, f.header()+featureQuery(q, bboxFilter(center, dist)))
	if err != nil {
		return nil, err
	}
	return featuresFromResult(res, q), nil
}

func (f *OverpassFetcher) header() string {
	return fmt.Sprintf("[out:json][timeout:%d];\n", int(f.timeout.Seconds()))
}

// query runs q with retries. The go-overpass client has no context support,
// so cancellation abandons the in-flight request instead of aborting it.
func (f *OverpassFetcher) query(ctx context.Context, kind, q string) (overpass.Result, error) {
	f.logger.Debug("overpass query", "kind", kind, "query", q)
	var res overpass.Result
	err := cache.RetryWithBackoff(ctx, func() error {
		type reply struct {
			res overpass.Result
			err error
		}
		ch := make(chan reply, 1)
		go func() {
			r, err := f.client.Query(q)
			ch <- reply{r, err}
		}()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-ch:
			if r.err != nil {
				f.logger.Warn("overpass request failed", "kind", kind, "err", r.err)
				return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, r.err))
			}
			res = r.res
			return nil
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return overpass.Result{}, ctx.Err()
		}
		return overpass.Result{}, perrors.Wrap(perrors.ErrCodeAcquisition, err, "fetch %s from overpass", kind)
	}
	return res, nil
}

// bboxFilter returns the Overpass bbox "south,west,north,east".
func bboxFilter(center geo.Point, dist int) string {
	b := center.Bound(float64(dist))
	return fmt.Sprintf("%.7f,%.7f,%.7f,%.7f", b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
}

func featureQuery(q FeatureQuery, bbox string) string {
	var b strings.Builder
	b.WriteString("(\n")
	for _, k := range q.TagKeys() {
		filter := tagFilter(k, q.Tags[k])
		fmt.Fprintf(&b, "  way%s(%s);\n", filter, bbox)
		if q.Area {
			fmt.Fprintf(&b, "  relation[\"type\"=\"multipolygon\"]%s(%s);\n", filter, bbox)
		}
	}
	b.WriteString(");\nout body;\n>;\nout skel qt;")
	return b.String()
}

func tagFilter(key string, values []string) string {
	if len(values) == 1 {
		return fmt.Sprintf("[%q=%q]", key, values[0])
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return fmt.Sprintf("[%q~%q]", key, "^("+strings.Join(quoted, "|")+")$")
}

// ============================================================================
// Result conversion
// ============================================================================

func wayLine(w *overpass.Way) orb.LineString {
	ls := make(orb.LineString, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		if n == nil {
			continue
		}
		ls = append(ls, orb.Point{n.Lon, n.Lat})
	}
	return ls
}

func sortedWays(res overpass.Result) []*overpass.Way {
	ways := make([]*overpass.Way, 0, len(res.Ways))
	for _, w := range res.Ways {
		ways = append(ways, w)
	}
	sort.Slice(ways, func(i, j int) bool { return ways[i].ID < ways[j].ID })
	return ways
}

func graphFromResult(res overpass.Result) *Graph {
	g := NewGraph()
	for _, w := range sortedWays(res) {
		if w.Tags["highway"] == "" || len(w.Nodes) < 2 {
			continue
		}
		var ids []int64
		for _, n := range w.Nodes {
			if n == nil {
				continue
			}
			g.Nodes[n.ID] = orb.Point{n.Lon, n.Lat}
			ids = append(ids, n.ID)
		}
		if len(ids) < 2 {
			continue
		}
		e := Edge{ID: w.ID, From: ids[0], To: ids[len(ids)-1], Tags: Tags(w.Tags)}
		if len(ids) > 2 {
			e.Geometry = wayLine(w)
		}
		g.Edges = append(g.Edges, e)
	}
	return g
}

func matches(tags map[string]string, q FeatureQuery) bool {
	for k, values := range q.Tags {
		v, ok := tags[k]
		if !ok {
			continue
		}
		for _, want := range values {
			if v == want {
				return true
			}
		}
	}
	return false
}

func featuresFromResult(res overpass.Result, q FeatureQuery) []Feature {
	var out []Feature
	for _, w := range sortedWays(res) {
		if !matches(w.Tags, q) {
			continue
		}
		ls := wayLine(w)
		if len(ls) < 2 {
			continue
		}
		f := Feature{ID: fmt.Sprintf("way/%d", w.ID), Tags: Tags(w.Tags), Geometry: ls}
		if q.Area && len(ls) >= 4 && ls[0] == ls[len(ls)-1] {
			f.Geometry = orb.Polygon{orb.Ring(ls)}
		}
		out = append(out, f)
	}

	if !q.Area {
		return out
	}
	rels := make([]*overpass.Relation, 0, len(res.Relations))
	for _, r := range res.Relations {
		rels = append(rels, r)
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].ID < rels[j].ID })
	for _, r := range rels {
		if r.Tags["type"] != "multipolygon" || !matches(r.Tags, q) {
			continue
		}
		var outer, inner []orb.LineString
		for _, m := range r.Members {
			if m.Type != overpass.ElementTypeWay || m.Way == nil {
				continue
			}
			ls := wayLine(m.Way)
			if len(ls) < 2 {
				continue
			}
			if m.Role == "inner" {
				inner = append(inner, ls)
			} else {
				outer = append(outer, ls)
			}
		}
		mp := buildMultiPolygon(assembleRings(outer), assembleRings(inner))
		if len(mp) == 0 {
			continue
		}
		out = append(out, Feature{ID: fmt.Sprintf("relation/%d", r.ID), Tags: Tags(r.Tags), Geometry: mp})
	}
	return out
}
