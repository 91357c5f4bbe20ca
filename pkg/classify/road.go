package classify

import (
	"strings"

	"github.com/kronpano/city-map-poster/pkg/theme"
)

// RoadTier is the importance class of a road edge.
type RoadTier int

// Road tiers in drawing order, least to most detailed.
const (
	Motorway RoadTier = iota
	Primary
	Secondary
	Tertiary
	Residential
	Other
)

// Tiers lists every tier in drawing order.
var Tiers = []RoadTier{Motorway, Primary, Secondary, Tertiary, Residential, Other}

// String returns the tier name used in layer ids ("motorway", "other").
func (t RoadTier) String() string {
	switch t {
	case Motorway:
		return "motorway"
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Tertiary:
		return "tertiary"
	case Residential:
		return "residential"
	default:
		return "other"
	}
}

// Style is the presentation of a stroked class.
type Style struct {
	Role theme.Role
	// Width is the stroke width in points (1/72 inch).
	Width float64
}

// Style returns the color role and stroke width of the tier.
func (t RoadTier) Style() Style {
	switch t {
	case Motorway:
		return Style{theme.RoleRoadMotorway, 1.2}
	case Primary:
		return Style{theme.RoleRoadPrimary, 1.0}
	case Secondary:
		return Style{theme.RoleRoadSecondary, 0.8}
	case Tertiary:
		return Style{theme.RoleRoadTertiary, 0.6}
	case Residential:
		return Style{theme.RoleRoadResidential, 0.4}
	default:
		return Style{theme.RoleRoadDefault, 0.4}
	}
}

// ClassifyRoad returns the tier for an ordered list of highway values.
// The first value wins; an empty list is a residential street.
func ClassifyRoad(values []string) RoadTier {
	if len(values) == 0 {
		return Residential
	}
	return classifyValue(values[0])
}

// ClassifyHighway classifies a raw highway tag. OSM encodes multiple
// values as a semicolon-separated list, of which the first wins.
func ClassifyHighway(v string) RoadTier {
	return ClassifyRoad(SplitValues(v))
}

func classifyValue(v string) RoadTier {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "motorway", "motorway_link":
		return Motorway
	case "trunk", "trunk_link", "primary", "primary_link":
		return Primary
	case "secondary", "secondary_link":
		return Secondary
	case "tertiary", "tertiary_link":
		return Tertiary
	case "residential", "living_street", "unclassified", "":
		return Residential
	default:
		return Other
	}
}

// SplitValues splits a semicolon-separated tag value. Blank entries are
// skipped, so "" and ";" both yield nil.
func SplitValues(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
