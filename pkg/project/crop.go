package project

import (
	"math"

	"github.com/paulmach/orb"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
)

// aspectEpsilon is the relative tolerance under which two aspect ratios
// are considered equal.
const aspectEpsilon = 1e-9

// Range is a closed interval [Min, Max] in planar units.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Center returns the midpoint.
func (r Range) Center() float64 { return (r.Min + r.Max) / 2 }

func centered(c, span float64) Range {
	return Range{Min: c - span/2, Max: c + span/2}
}

// Window is an axis-aligned rectangle in planar units.
type Window struct {
	X Range `json:"x"`
	Y Range `json:"y"`
}

// WindowFromBound converts an orb bound.
func WindowFromBound(b orb.Bound) Window {
	return Window{
		X: Range{Min: b.Min.X(), Max: b.Max.X()},
		Y: Range{Min: b.Min.Y(), Max: b.Max.Y()},
	}
}

// Aspect returns width / height.
func (w Window) Aspect() float64 { return w.X.Span() / w.Y.Span() }

// Degenerate reports whether either dimension has no positive extent.
func (w Window) Degenerate() bool {
	return !(w.X.Span() > 0) || !(w.Y.Span() > 0)
}

// SolveCrop returns the largest window centered on extent whose aspect
// ratio is target. The dimension that is too long relative to target is
// shrunk; the other is kept, so the window never exceeds extent.
//
// A zero-width or zero-height extent (all points collinear along an axis
// or coincident) is a degenerate-geometry error.
func SolveCrop(extent Window, target float64) (Window, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) || target <= 0 {
		return Window{}, perrors.New(perrors.ErrCodeInvalidRatio, "target aspect ratio must be positive, got %v", target)
	}
	if extent.Degenerate() {
		return Window{}, perrors.New(perrors.ErrCodeDegenerate,
			"street network extent is %gx%g; cannot derive an aspect-correct crop", extent.X.Span(), extent.Y.Span())
	}

	w, h := extent.X.Span(), extent.Y.Span()
	current := w / h
	switch {
	case math.Abs(current-target) <= aspectEpsilon*target:
		return extent, nil
	case current > target:
		return Window{X: centered(extent.X.Center(), h*target), Y: extent.Y}, nil
	default:
		return Window{X: extent.X, Y: centered(extent.Y.Center(), w/target)}, nil
	}
}
