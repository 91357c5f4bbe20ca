// Package project converts geometry between the three coordinate spaces of
// a poster:
//
//   - geographic WGS-84 (lon, lat), as fetched;
//   - the planar CRS, Web Mercator metres, in which the crop window is
//     solved ([ToPlanar]);
//   - canvas pixels with a top-left origin ([Projector]).
//
// [SolveCrop] derives the aspect-correct crop window from the extent of the
// planar street graph. The canvas size for an output is derived from an
// [AspectRatio] and a DPI by [AspectRatio.Canvas].
package project
