// Package layers composes a session and a theme into a drawable poster.
//
// Composition is the single source of truth for what a poster contains.
// Every output format receives the same [Poster] from [Compose] and only
// serializes it, so raster and vector outputs agree on the crop, the
// classification and the z-order by construction.
//
// # Z-order
//
//  1. water (fill)
//  2. parks (fill)
//  3. roads-motorway .. roads-other (stroke, see [classify.Tiers])
//  4. railways (stroke)
//  5. subway (stroke, fixed #FF00FF)
//  6. fades (see [Fades])
//  7. labels (see [ComposeLabels])
//
// Layers without features are omitted. Every path has a stable id
// "{layer}-{feature}" or "{layer}-{feature}-{part}" where feature is the
// index in the source table and part the index within a multi-part
// geometry.
//
// [classify.Tiers]: github.com/kronpano/city-map-poster/pkg/classify.Tiers
package layers
