package project

import (
	"github.com/paulmach/orb"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
)

// Projector maps planar coordinates inside a crop window onto a canvas with
// a top-left origin. Points outside the window map outside the canvas; no
// clipping is done.
type Projector struct {
	win           Window
	width, height float64
	sx, sy        float64
}

// NewProjector creates a projector for a canvas of width x height pixels.
func NewProjector(win Window, width, height float64) (*Projector, error) {
	if win.Degenerate() {
		return nil, perrors.New(perrors.ErrCodeDegenerate, "crop window has zero extent")
	}
	if !(width > 0) || !(height > 0) {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "canvas size must be positive, got %gx%g", width, height)
	}
	return &Projector{
		win:    win,
		width:  width,
		height: height,
		sx:     width / win.X.Span(),
		sy:     height / win.Y.Span(),
	}, nil
}

// Point maps one planar point. The vertical axis is flipped.
func (p *Projector) Point(pt orb.Point) orb.Point {
	return orb.Point{
		(pt.X() - p.win.X.Min) * p.sx,
		p.height - (pt.Y()-p.win.Y.Min)*p.sy,
	}
}

// Points maps a point list into a new slice.
func (p *Projector) Points(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, pt := range pts {
		out[i] = p.Point(pt)
	}
	return out
}

// Size returns the canvas size.
func (p *Projector) Size() (width, height float64) {
	return p.width, p.height
}
