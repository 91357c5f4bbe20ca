// Package classify maps tagged OpenStreetMap records to poster classes.
//
// Every function here is pure and total: any input, including records with
// missing tags, maps to exactly one class. The classes are closed
// enumerations and each is matched with an exhaustive switch.
//
// # Roads
//
// [ClassifyRoad] reads the highway tag and returns one of six [RoadTier]
// values. The tier determines the theme color role and stroke width via
// [RoadTier.Style]:
//
//	tier := classify.ClassifyHighway("primary_link") // classify.Primary
//	style := tier.Style()                           // road_primary, 1.0pt
//
// A highway value that is absent or empty is treated as a residential
// street. A non-empty value that is not recognized maps to [Other].
//
// # Rail
//
// [ClassifyRail] separates subway and light rail from normal rail.
// [PartitionRail] applies it to a whole feature table and guarantees the
// two halves are disjoint and together contain every line feature.
//
// # Geometry kinds
//
// Water and park layers accept only polygonal geometry and rail layers
// accept only linear geometry. [Polygonal] and [Linear] filter feature
// tables accordingly and drop everything else without error.
package classify
