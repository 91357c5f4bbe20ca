package project

import (
	"github.com/paulmach/orb"
	orbproject "github.com/paulmach/orb/project"
)

// ToPlanar returns a copy of g in Web Mercator metres. The input is not
// modified.
func ToPlanar(g orb.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	return orbproject.Geometry(orb.Clone(g), orbproject.WGS84.ToMercator)
}

// PointToPlanar projects a single (lon, lat) point.
func PointToPlanar(p orb.Point) orb.Point {
	return orbproject.WGS84.ToMercator(p)
}
