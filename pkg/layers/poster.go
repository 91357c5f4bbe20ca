package layers

import (
	"github.com/kronpano/city-map-poster/pkg/geo"
	"github.com/kronpano/city-map-poster/pkg/project"
	"github.com/kronpano/city-map-poster/pkg/session"
	"github.com/kronpano/city-map-poster/pkg/theme"
)

// Poster is a fully composed poster in canvas pixel coordinates.
type Poster struct {
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	DPI        float64        `json:"dpi"`
	Theme      string         `json:"theme"`
	Place      geo.Place      `json:"place"`
	Background string         `json:"background"`
	Layers     []Layer        `json:"layers"`
	Fades      []Fade         `json:"fades"`
	Labels     Labels         `json:"labels"`
	Crop       project.Window `json:"crop"`
}

// Px converts a length in points to canvas pixels.
func (p *Poster) Px(pt float64) float64 {
	return pt * p.DPI / 72
}

// LayerIDs returns the ids of the non-empty layers in z-order.
func (p *Poster) LayerIDs() []string {
	ids := make([]string, len(p.Layers))
	for i, l := range p.Layers {
		ids[i] = l.ID
	}
	return ids
}

// Compose builds the poster for s in theme th at dpi. The canvas size is
// derived from the session's aspect ratio; all geometry is mapped through
// the session's crop window.
func Compose(s *session.Session, th theme.Theme, dpi float64) (*Poster, error) {
	w, h := s.Aspect().Canvas(dpi)
	width, height := float64(w), float64(h)
	proj, err := project.NewProjector(s.Crop(), width, height)
	if err != nil {
		return nil, err
	}

	planar := Build(s, th)
	out := make([]Layer, len(planar))
	for i, l := range planar {
		paths := make([]Path, len(l.Paths))
		for j, p := range l.Paths {
			paths[j] = Path{ID: p.ID, Points: proj.Points(p.Points)}
		}
		l.Paths = paths
		out[i] = l
	}

	labels := ComposeLabels(s.Place(), width, height)
	labels.Color = th.Color(theme.RoleText)

	return &Poster{
		Width:      width,
		Height:     height,
		DPI:        dpi,
		Theme:      th.ID,
		Place:      s.Place(),
		Background: th.Color(theme.RoleBackground),
		Layers:     out,
		Fades:      Fades(th, width, height),
		Labels:     labels,
		Crop:       s.Crop(),
	}, nil
}
