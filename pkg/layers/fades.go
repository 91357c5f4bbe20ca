package layers

import "github.com/kronpano/city-map-poster/pkg/theme"

// fadeFraction is the share of the canvas height covered by each fade band.
const fadeFraction = 0.25

// Fade is a vertical linear gradient band in one color. Alpha goes from
// TopAlpha at Y to BottomAlpha at Y+Height.
type Fade struct {
	ID          string  `json:"id"`
	GradientID  string  `json:"gradient_id"`
	Color       string  `json:"color"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	TopAlpha    float64 `json:"top_alpha"`
	BottomAlpha float64 `json:"bottom_alpha"`
}

// Fades returns the bottom and top fade bands, in that drawing order, in the
// theme's gradient color.
func Fades(th theme.Theme, width, height float64) []Fade {
	color := th.Color(theme.RoleGradient)
	band := height * fadeFraction
	return []Fade{
		{
			ID:          "gradient-bottom",
			GradientID:  "fadeGradientBottom",
			Color:       color,
			Y:           height - band,
			Width:       width,
			Height:      band,
			TopAlpha:    0,
			BottomAlpha: 1,
		},
		{
			ID:          "gradient-top",
			GradientID:  "fadeGradientTop",
			Color:       color,
			Y:           0,
			Width:       width,
			Height:      band,
			TopAlpha:    1,
			BottomAlpha: 0,
		},
	}
}

// AlphaAt returns the band's opacity at canvas row y, or 0 outside it.
func (f Fade) AlphaAt(y float64) float64 {
	if f.Height <= 0 || y < f.Y || y > f.Y+f.Height {
		return 0
	}
	t := (y - f.Y) / f.Height
	return f.TopAlpha + (f.BottomAlpha-f.TopAlpha)*t
}
