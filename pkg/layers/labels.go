package layers

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kronpano/city-map-poster/pkg/geo"
)

// Attribution is the data credit printed in the bottom-right corner.
const Attribution = "© OpenStreetMap contributors"

// Label sizes in pixels at ReferenceWidth. Sizes scale linearly with the
// canvas width.
const (
	ReferenceWidth = 4800.0

	TitleSize       = 250.0
	SubtitleSize    = 92.0
	CoordsSize      = 58.0
	AttributionSize = 33.0

	// Names longer than this shrink the title proportionally.
	titleMaxRunes = 10
	// The title never shrinks below this fraction of TitleSize.
	titleMinScale = 0.4
)

// Vertical label positions as fractions of the canvas height.
const (
	titleY       = 0.92
	dividerY     = 0.93
	subtitleY    = 0.95
	coordsY      = 0.97
	attributionY = 0.98
	dividerSpan  = 0.2
)

// Anchor is the horizontal text alignment relative to the label's X.
type Anchor string

const (
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Weight is a font weight.
type Weight int

const (
	WeightLight   Weight = 300
	WeightRegular Weight = 400
	WeightBold    Weight = 700
)

// Text is a positioned text label. X and Y are the anchor point and
// baseline in pixels.
type Text struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Anchor  Anchor  `json:"anchor"`
	Weight  Weight  `json:"weight"`
	Opacity float64 `json:"opacity"`
}

// Line is a straight stroked segment in pixels.
type Line struct {
	ID    string  `json:"id"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Width float64 `json:"width"`
}

// Labels is the text block drawn above every other layer.
type Labels struct {
	Color       string `json:"color"`
	Title       Text   `json:"title"`
	Subtitle    Text   `json:"subtitle"`
	Coords      Text   `json:"coords"`
	Attribution Text   `json:"attribution"`
	Divider     Line   `json:"divider"`
}

// Texts returns the text labels in drawing order.
func (l Labels) Texts() []Text {
	return []Text{l.Title, l.Subtitle, l.Coords, l.Attribution}
}

// ComposeLabels lays out the labels for place on a width x height canvas.
// The color is left empty for the caller to fill in.
func ComposeLabels(place geo.Place, width, height float64) Labels {
	scale := width / ReferenceWidth
	cx := width / 2

	return Labels{
		Title: Text{
			ID:      "city-name",
			Content: SpacedTitle(place.City),
			X:       cx,
			Y:       height * titleY,
			Size:    TitleFontSize(place.City, scale),
			Anchor:  AnchorMiddle,
			Weight:  WeightBold,
			Opacity: 1,
		},
		Divider: Line{
			ID:    "divider-line",
			X1:    cx - width*dividerSpan/2,
			Y1:    height * dividerY,
			X2:    cx + width*dividerSpan/2,
			Y2:    height * dividerY,
			Width: math.Max(1, 4*scale),
		},
		Subtitle: Text{
			ID:      "location",
			Content: Subtitle(place),
			X:       cx,
			Y:       height * subtitleY,
			Size:    SubtitleSize * scale,
			Anchor:  AnchorMiddle,
			Weight:  WeightLight,
			Opacity: 1,
		},
		Coords: Text{
			ID:      "coordinates",
			Content: FormatCoords(place.Point),
			X:       cx,
			Y:       height * coordsY,
			Size:    CoordsSize * scale,
			Anchor:  AnchorMiddle,
			Weight:  WeightRegular,
			Opacity: 0.7,
		},
		Attribution: Text{
			ID:      "attribution",
			Content: Attribution,
			X:       width * attributionY,
			Y:       height * attributionY,
			Size:    AttributionSize * scale,
			Anchor:  AnchorEnd,
			Weight:  WeightRegular,
			Opacity: 0.5,
		},
	}
}

// TitleFontSize returns the title size in pixels for city at the given
// width scale.
func TitleFontSize(city string, scale float64) float64 {
	base := TitleSize * scale
	n := utf8.RuneCountInString(city)
	if n <= titleMaxRunes {
		return base
	}
	return math.Max(base*titleMaxRunes/float64(n), base*titleMinScale)
}

// SpacedTitle upper-cases city and separates its characters by two spaces.
func SpacedTitle(city string) string {
	upper := cases.Upper(language.Und).String(strings.TrimSpace(city))
	runes := []rune(upper)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, "  ")
}

// Subtitle returns "Region (Country)" or just the country.
func Subtitle(p geo.Place) string {
	if p.Region != "" {
		return fmt.Sprintf("%s (%s)", p.Region, p.Country)
	}
	return p.Country
}

// FormatCoords prints a point as "48.8566° N / 2.3522° E".
func FormatCoords(p geo.Point) string {
	ns, ew := "N", "E"
	if p.Lat < 0 {
		ns = "S"
	}
	if p.Lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.4f° %s / %.4f° %s", math.Abs(p.Lat), ns, math.Abs(p.Lon), ew)
}
