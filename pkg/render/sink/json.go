package sink

import (
	"encoding/json"

	"github.com/paulmach/orb"

	"github.com/kronpano/city-map-poster/pkg/geo"
	"github.com/kronpano/city-map-poster/pkg/layers"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact bool
	session string
}

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONSession records the id of the session the poster was built from.
func WithJSONSession(id string) JSONOption { return func(r *jsonRenderer) { r.session = id } }

type jsonOutput struct {
	Session    string        `json:"session,omitempty"`
	Theme      string        `json:"theme"`
	Place      geo.Place     `json:"place"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	DPI        float64       `json:"dpi"`
	Background string        `json:"background"`
	Layers     []jsonLayer   `json:"layers"`
	Fades      []layers.Fade `json:"fades"`
	Labels     layers.Labels `json:"labels"`
}

type jsonLayer struct {
	ID          string      `json:"id"`
	Kind        layers.Kind `json:"kind"`
	Color       string      `json:"color"`
	StrokeWidth float64     `json:"stroke_width,omitempty"`
	Paths       []jsonPath  `json:"paths"`
}

type jsonPath struct {
	ID     string       `json:"id"`
	Points [][2]float64 `json:"points"`
}

// RenderJSON exports the poster's layers, fades and labels in canvas
// pixels. Stroke widths are converted from points to pixels.
func RenderJSON(p *layers.Poster, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Session:    r.session,
		Theme:      p.Theme,
		Place:      p.Place,
		Width:      p.Width,
		Height:     p.Height,
		DPI:        p.DPI,
		Background: p.Background,
		Layers:     make([]jsonLayer, len(p.Layers)),
		Fades:      p.Fades,
		Labels:     p.Labels,
	}
	for i, l := range p.Layers {
		jl := jsonLayer{ID: l.ID, Kind: l.Kind, Color: l.Color, Paths: make([]jsonPath, len(l.Paths))}
		if l.Kind == layers.Stroke {
			jl.StrokeWidth = roundTo(p.Px(l.Width), 3)
		}
		for j, path := range l.Paths {
			jl.Paths[j] = jsonPath{ID: path.ID, Points: points(path.Points)}
		}
		out.Layers[i] = jl
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

func points(pts []orb.Point) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, pt := range pts {
		out[i] = [2]float64{roundTo(pt.X(), 2), roundTo(pt.Y(), 2)}
	}
	return out
}
