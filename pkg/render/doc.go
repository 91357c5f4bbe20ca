// Package render turns a composed poster into output documents.
//
// # Overview
//
// Composition happens once in [layers.Compose]; the [sink] subpackage then
// serializes the resulting poster into each requested format:
//
//   - png: raster image drawn with gg
//   - svg: a flat vector document
//   - svg-layered: a vector document with one named group per layer
//   - pdf: the flat SVG converted by rsvg-convert
//   - json: a layer dump for downstream tooling
//
// # Format Conversion
//
// [ToPDF] converts any SVG to PDF using the external rsvg-convert tool
// (from librsvg). Requires librsvg: brew install librsvg (macOS),
// apt install librsvg2-bin (Linux).
//
//	svg, _ := sink.RenderSVG(poster)
//	pdf, err := render.ToPDF(ctx, svg, 72)
//
// [layers.Compose]: github.com/kronpano/city-map-poster/pkg/layers.Compose
// [sink]: github.com/kronpano/city-map-poster/pkg/render/sink
package render
