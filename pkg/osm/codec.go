package osm

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// EncodeGraph serializes a graph as JSON.
func EncodeGraph(g *Graph) ([]byte, error) {
	return json.Marshal(g)
}

// DecodeGraph parses a graph written by EncodeGraph.
func DecodeGraph(data []byte) (*Graph, error) {
	g := NewGraph()
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return g, nil
}

// EncodeFeatures serializes a feature table as a GeoJSON FeatureCollection.
// Tags become string properties.
func EncodeFeatures(features []Feature) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.ID
		for k, v := range f.Tags {
			gf.Properties[k] = v
		}
		fc.Append(gf)
	}
	return fc.MarshalJSON()
}

// DecodeFeatures parses a table written by EncodeFeatures. Non-string
// properties are ignored.
func DecodeFeatures(data []byte) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	out := make([]Feature, 0, len(fc.Features))
	for _, gf := range fc.Features {
		tags := make(Tags, len(gf.Properties))
		for k, v := range gf.Properties {
			if s, ok := v.(string); ok {
				tags[k] = s
			}
		}
		id, _ := gf.ID.(string)
		out = append(out, Feature{ID: id, Tags: tags, Geometry: gf.Geometry})
	}
	return out, nil
}
