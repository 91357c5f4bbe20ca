// Package geo holds geographic inputs of a poster: the center point, the
// place it names, and center shifts along compass bearings.
package geo

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
)

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewPoint returns a validated point.
func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate checks the coordinate ranges.
func (p Point) Validate() error {
	return perrors.ValidateCoordinates(p.Lat, p.Lon)
}

// Orb returns the point in orb's (lon, lat) order.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FromOrb converts an orb point back to a Point.
func FromOrb(o orb.Point) Point {
	return Point{Lat: o.Lat(), Lon: o.Lon()}
}

// String formats the point as "lat, lon" with six decimals.
func (p Point) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lon)
}

// Bound returns the square box reaching dist metres from p in each
// cardinal direction.
func (p Point) Bound(dist float64) orb.Bound {
	return orbgeo.NewBoundAroundPoint(p.Orb(), dist)
}

// Place is a named location on the map.
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
	// Region is the state, province or county; empty if unknown.
	Region string `json:"region,omitempty"`
	Point  Point  `json:"point"`
}

// ============================================================================
// Shifts
// ============================================================================

// bearings maps the 16 compass points to degrees clockwise from north.
var bearings = map[string]float64{
	"n": 0, "nne": 22.5, "ne": 45, "ene": 67.5,
	"e": 90, "ese": 112.5, "se": 135, "sse": 157.5,
	"s": 180, "ssw": 202.5, "sw": 225, "wsw": 247.5,
	"w": 270, "wnw": 292.5, "nw": 315, "nnw": 337.5,
}

var shiftRegex = regexp.MustCompile(`^([\d.]+)([nsew]+)$`)

// Shift moves the map center a distance along a compass bearing.
type Shift struct {
	// Spec is the normalized input, e.g. "2.5ne".
	Spec       string
	DistanceKm float64
	Direction  string
	Bearing    float64
}

// ParseShift parses a shift such as "2w", "5ne" or "3.5nnw". The distance
// is in kilometres. An empty string returns the zero Shift.
func ParseShift(s string) (Shift, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Shift{}, nil
	}
	m := shiftRegex.FindStringSubmatch(s)
	if m == nil {
		return Shift{}, perrors.New(perrors.ErrCodeInvalidShift,
			"invalid shift %q: use a distance in km and a direction, like 2w, 5ne, 3.5s or 4nnw", s)
	}
	dist, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsInf(dist, 0) {
		return Shift{}, perrors.New(perrors.ErrCodeInvalidShift, "invalid shift distance %q", m[1])
	}
	bearing, ok := bearings[m[2]]
	if !ok {
		return Shift{}, perrors.New(perrors.ErrCodeInvalidShift,
			"invalid shift direction %q (valid: %s)", m[2], strings.Join(Directions(), ", "))
	}
	return Shift{Spec: s, DistanceKm: dist, Direction: m[2], Bearing: bearing}, nil
}

// IsZero reports whether the shift leaves the center unchanged.
func (s Shift) IsZero() bool {
	return s.Spec == "" || s.DistanceKm == 0
}

// Apply returns p moved along the shift's bearing.
func (s Shift) Apply(p Point) Point {
	if s.IsZero() {
		return p
	}
	out := FromOrb(orbgeo.PointAtBearingAndDistance(p.Orb(), s.Bearing, s.DistanceKm*1000))
	out.Lon = WrapLon(out.Lon)
	return out
}

// WrapLon maps a longitude in degrees into [-180, 180).
func WrapLon(lon float64) float64 {
	if lon >= -180 && lon < 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// Directions returns the valid compass directions, sorted.
func Directions() []string {
	out := make([]string, 0, len(bearings))
	for d := range bearings {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
