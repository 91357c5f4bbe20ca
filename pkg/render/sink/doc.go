// Package sink serializes a composed [layers.Poster] into output formats.
//
// Every renderer takes the same poster and only decides how to write it.
// None of them classify, crop or reorder anything, so the raster and vector
// outputs of one poster always contain the same layers in the same order.
//
//	svg, err := sink.RenderSVG(p, sink.WithLayered())
//	png, err := sink.RenderPNG(p, sink.WithFonts(fonts.Discover()))
//	pdf, err := sink.RenderPDF(ctx, p)
//	js, err := sink.RenderJSON(p)
//
// # SVG Options
//
//   - [WithLayered]: one named group per layer, with fade gradients defined
//     in defs and ids on every path and label
//   - [WithEmbeddedFonts]: embed the font set as base64 @font-face rules
//
// # PNG Options
//
//   - [WithFonts]: font set for labels (default [fonts.Default])
//   - [WithMaxSize]: downscale so neither side exceeds the given pixels
//
// PDF output requires rsvg-convert; see [render.ToPDF].
//
// [layers.Poster]: github.com/kronpano/city-map-poster/pkg/layers.Poster
// [fonts.Default]: github.com/kronpano/city-map-poster/pkg/fonts.Default
// [render.ToPDF]: github.com/kronpano/city-map-poster/pkg/render.ToPDF
package sink
