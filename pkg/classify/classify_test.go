package classify

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/kronpano/city-map-poster/pkg/osm"
)

func TestClassifyHighway(t *testing.T) {
	tests := []struct {
		in   string
		want RoadTier
	}{
		{"motorway", Motorway},
		{"motorway_link", Motorway},
		{"trunk", Primary},
		{"trunk_link", Primary},
		{"primary", Primary},
		{"primary_link", Primary},
		{"secondary", Secondary},
		{"secondary_link", Secondary},
		{"tertiary", Tertiary},
		{"tertiary_link", Tertiary},
		{"residential", Residential},
		{"living_street", Residential},
		{"unclassified", Residential},
		{"", Residential},
		{" Motorway ", Motorway},
		{"footway", Other},
		{"service", Other},
		{"cycleway", Other},
		{"something_new", Other},
		{"primary;residential", Primary},
		{"footway;motorway", Other},
		{";tertiary", Tertiary},
	}
	for _, tt := range tests {
		if got := ClassifyHighway(tt.in); got != tt.want {
			t.Errorf("ClassifyHighway(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClassifyRoadList(t *testing.T) {
	if got := ClassifyRoad(nil); got != Residential {
		t.Errorf("ClassifyRoad(nil) = %v, want residential", got)
	}
	if got := ClassifyRoad([]string{"secondary", "motorway"}); got != Secondary {
		t.Errorf("ClassifyRoad(first wins) = %v, want secondary", got)
	}
}

func TestTierNamesRoundTrip(t *testing.T) {
	for _, tier := range Tiers {
		if tier == Other {
			continue
		}
		if got := ClassifyHighway(tier.String()); got != tier {
			t.Errorf("ClassifyHighway(%q) = %v, want %v", tier.String(), got, tier)
		}
	}
	if got := ClassifyHighway(Other.String()); got != Other {
		t.Errorf("ClassifyHighway(other) = %v", got)
	}
}

func TestTierStylesDecrease(t *testing.T) {
	prev := Motorway.Style().Width
	for _, tier := range Tiers[1:] {
		w := tier.Style().Width
		if w > prev {
			t.Errorf("%v width %v wider than previous tier %v", tier, w, prev)
		}
		if tier.Style().Role == "" {
			t.Errorf("%v has no color role", tier)
		}
		prev = w
	}
}

func TestClassifyRail(t *testing.T) {
	tests := []struct {
		tags osm.Tags
		want RailKind
	}{
		{osm.Tags{"railway": "rail"}, NormalRail},
		{osm.Tags{"railway": "subway"}, SubwayRail},
		{osm.Tags{"railway": "light_rail"}, SubwayRail},
		{osm.Tags{"railway": "subway;rail"}, SubwayRail},
		{osm.Tags{"railway": "rail;subway"}, NormalRail},
		{osm.Tags{"railway": " Light_Rail "}, SubwayRail},
		{osm.Tags{"railway": "rail", "subway": "yes"}, SubwayRail},
		{osm.Tags{"railway": "tram"}, NormalRail},
		{osm.Tags{}, NormalRail},
		{nil, NormalRail},
	}
	for _, tt := range tests {
		if got := ClassifyRail(tt.tags); got != tt.want {
			t.Errorf("ClassifyRail(%v) = %v, want %v", tt.tags, got, tt.want)
		}
	}
}

func TestPartitionRail(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 1}}
	in := []osm.Feature{
		{ID: "way/1", Tags: osm.Tags{"railway": "subway"}, Geometry: line},
		{ID: "way/2", Tags: osm.Tags{"railway": "rail"}, Geometry: line},
		{ID: "way/3", Tags: osm.Tags{"railway": "rail"}, Geometry: orb.Point{0, 0}},
		{ID: "way/4", Tags: osm.Tags{"railway": "light_rail"}, Geometry: orb.MultiLineString{line, line}},
	}

	normal, subway := PartitionRail(in)

	if len(normal) != 1 || normal[0].ID != "way/2" {
		t.Errorf("normal = %v, want [way/2]", ids(normal))
	}
	if len(subway) != 2 || subway[0].ID != "way/1" || subway[1].ID != "way/4" {
		t.Errorf("subway = %v, want [way/1 way/4]", ids(subway))
	}

	seen := map[string]int{}
	for _, f := range append(normal, subway...) {
		seen[f.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("%s appears in %d partitions", id, n)
		}
	}
}

func TestPartitionRailTwoRecords(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 1}}
	normal, subway := PartitionRail([]osm.Feature{
		{ID: "a", Tags: osm.Tags{"railway": "subway"}, Geometry: line},
		{ID: "b", Tags: osm.Tags{"railway": "rail"}, Geometry: line},
	})
	if len(normal) != 1 || len(subway) != 1 {
		t.Fatalf("partition sizes = %d/%d, want 1/1", len(normal), len(subway))
	}
	if normal[0].ID == subway[0].ID {
		t.Error("same record in both partitions")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		g    orb.Geometry
		want Kind
	}{
		{"polygon", orb.Polygon{}, KindPolygon},
		{"multipolygon", orb.MultiPolygon{}, KindPolygon},
		{"line", orb.LineString{}, KindLine},
		{"multiline", orb.MultiLineString{}, KindLine},
		{"point", orb.Point{}, KindOther},
		{"collection", orb.Collection{}, KindOther},
		{"nil", nil, KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.g); got != tt.want {
				t.Errorf("KindOf(%T) = %v, want %v", tt.g, got, tt.want)
			}
		})
	}
}

func TestPolygonalLinear(t *testing.T) {
	in := []osm.Feature{
		{ID: "p", Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}},
		{ID: "l", Geometry: orb.LineString{{0, 0}, {1, 1}}},
		{ID: "n", Geometry: orb.Point{0, 0}},
	}
	if got := ids(Polygonal(in)); len(got) != 1 || got[0] != "p" {
		t.Errorf("Polygonal() = %v", got)
	}
	if got := ids(Linear(in)); len(got) != 1 || got[0] != "l" {
		t.Errorf("Linear() = %v", got)
	}
	if Polygonal(nil) != nil {
		t.Error("Polygonal(nil) should be nil")
	}
}

func ids(fs []osm.Feature) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.ID
	}
	return out
}
