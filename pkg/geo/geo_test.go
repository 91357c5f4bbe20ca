package geo

import (
	"math"
	"testing"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
)

func TestNewPoint(t *testing.T) {
	tests := []struct {
		lat, lon float64
		wantErr  bool
	}{
		{48.8566, 2.3522, false},
		{-90, 180, false},
		{90.1, 0, true},
		{0, -180.5, true},
		{math.NaN(), 0, true},
	}
	for _, tt := range tests {
		_, err := NewPoint(tt.lat, tt.lon)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewPoint(%v, %v) error = %v, wantErr %v", tt.lat, tt.lon, err, tt.wantErr)
		}
	}
}

func TestPointOrbOrder(t *testing.T) {
	p := Point{Lat: 10, Lon: 20}
	o := p.Orb()
	if o[0] != 20 || o[1] != 10 {
		t.Errorf("Orb() = %v, want [20 10]", o)
	}
	if FromOrb(o) != p {
		t.Errorf("FromOrb(Orb()) = %v, want %v", FromOrb(o), p)
	}
}

func TestParseShift(t *testing.T) {
	tests := []struct {
		in      string
		dist    float64
		bearing float64
		wantErr bool
	}{
		{"2w", 2, 270, false},
		{"5NE", 5, 45, false},
		{"3.5s", 3.5, 180, false},
		{"4nnw", 4, 337.5, false},
		{"1wsw", 1, 247.5, false},
		{"", 0, 0, false},
		{"north", 0, 0, true},
		{"5", 0, 0, true},
		{"5nnnn", 0, 0, true},
		{"1.2.3n", 0, 0, true},
		{"-2n", 0, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseShift(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseShift(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !perrors.Is(err, perrors.ErrCodeInvalidShift) {
				t.Errorf("ParseShift(%q) code = %v, want INVALID_SHIFT", tt.in, perrors.GetCode(err))
			}
			continue
		}
		if got.DistanceKm != tt.dist || got.Bearing != tt.bearing {
			t.Errorf("ParseShift(%q) = %+v, want dist %v bearing %v", tt.in, got, tt.dist, tt.bearing)
		}
	}
}

func TestShiftApply(t *testing.T) {
	origin := Point{Lat: 40, Lon: 116}

	north, _ := ParseShift("5n")
	p := north.Apply(origin)
	// 5 km is about 0.045 degrees of latitude.
	if math.Abs(p.Lat-40.045) > 0.001 || math.Abs(p.Lon-116) > 1e-9 {
		t.Errorf("Apply(5n) = %v, want about 40.045, 116", p)
	}

	west, _ := ParseShift("2w")
	p = west.Apply(origin)
	if p.Lon >= origin.Lon || math.Abs(p.Lat-origin.Lat) > 0.001 {
		t.Errorf("Apply(2w) = %v, want west of %v", p, origin)
	}

	var zero Shift
	if zero.Apply(origin) != origin {
		t.Error("zero shift should not move the point")
	}
}

func TestShiftApplyWrapsAntimeridian(t *testing.T) {
	east, _ := ParseShift("10e")
	p := east.Apply(Point{Lat: 0, Lon: 179.99})
	if err := p.Validate(); err != nil {
		t.Fatalf("Apply(10e) near the antimeridian = %v, invalid: %v", p, err)
	}
	if p.Lon > -179.9 || p.Lon < -180 {
		t.Errorf("Apply(10e).Lon = %v, want just east of -180", p.Lon)
	}

	west, _ := ParseShift("10w")
	p = west.Apply(Point{Lat: 0, Lon: -179.99})
	if err := p.Validate(); err != nil || p.Lon < 179.9 {
		t.Errorf("Apply(10w) near the antimeridian = %v, err %v", p, err)
	}
}

func TestWrapLon(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{179.5, 179.5},
		{-180, -180},
		{180, -180},
		{180.5, -179.5},
		{-180.5, 179.5},
		{540, -180},
		{-370, -10},
	}
	for _, tt := range tests {
		if got := WrapLon(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapLon(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDirections(t *testing.T) {
	d := Directions()
	if len(d) != 16 {
		t.Fatalf("Directions() has %d entries, want 16", len(d))
	}
	for i := 1; i < len(d); i++ {
		if d[i-1] >= d[i] {
			t.Errorf("Directions() not sorted at %d: %v", i, d)
		}
	}
}

func TestPointBound(t *testing.T) {
	b := Point{Lat: 0, Lon: 0}.Bound(1000)
	if !(b.Min.Lat() < 0 && b.Max.Lat() > 0 && b.Min.Lon() < 0 && b.Max.Lon() > 0) {
		t.Errorf("Bound(1000) = %v, want box around origin", b)
	}
}
