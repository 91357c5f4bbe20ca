package classify

import (
	"strings"

	"github.com/kronpano/city-map-poster/pkg/osm"
	"github.com/kronpano/city-map-poster/pkg/theme"
)

// RailKind separates subway and light rail from other rail lines.
type RailKind int

const (
	NormalRail RailKind = iota
	SubwayRail
)

func (k RailKind) String() string {
	if k == SubwayRail {
		return "subway"
	}
	return "railways"
}

// Style returns the color role and stroke width of the kind. Subway lines
// use the fixed [theme.SubwayColor] and carry no role.
func (k RailKind) Style() Style {
	if k == SubwayRail {
		return Style{Width: 0.8}
	}
	return Style{theme.RoleRailway, 0.6}
}

// ClassifyRail returns SubwayRail when railway is subway or light_rail, or
// subway=yes; every other record is NormalRail. As with roads, only the
// first of several railway values counts.
func ClassifyRail(tags osm.Tags) RailKind {
	if vs := SplitValues(tags["railway"]); len(vs) > 0 {
		switch strings.ToLower(vs[0]) {
		case "subway", "light_rail":
			return SubwayRail
		}
	}
	if strings.EqualFold(strings.TrimSpace(tags["subway"]), "yes") {
		return SubwayRail
	}
	return NormalRail
}

// PartitionRail keeps the linear features and splits them by [RailKind].
// Input order is preserved within each half.
func PartitionRail(features []osm.Feature) (normal, subway []osm.Feature) {
	for _, f := range Linear(features) {
		switch ClassifyRail(f.Tags) {
		case SubwayRail:
			subway = append(subway, f)
		default:
			normal = append(normal, f)
		}
	}
	return normal, subway
}
