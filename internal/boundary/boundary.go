// Package boundary loads GeoJSON boundary files (congressional districts or
// states) and resolves each feature's join key.
package boundary

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNotFeatureCollection is returned when a file parses as JSON but is not a
// GeoJSON FeatureCollection.
var ErrNotFeatureCollection = errors.New("not a GeoJSON FeatureCollection")

// keyProperties is the lookup order for a feature's join key. Census district
// files carry GEOID; state files vary between STATEFP, STATE and FIPS. The
// top-level feature id is the last resort.
var keyProperties = []string{"GEOID", "STATEFP", "STATE", "FIPS"}

// Collection is a loaded boundary file. It is never mutated after Load;
// callers that need to decorate features work on a Clone.
type Collection struct {
	Path string
	fc   *geojson.FeatureCollection
}

// Load reads and parses a boundary file.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse decodes a GeoJSON FeatureCollection.
func Parse(data []byte) (*Collection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundary geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, ErrNotFeatureCollection
	}
	return &Collection{fc: fc}, nil
}

// Len returns the number of features.
func (c *Collection) Len() int {
	return len(c.fc.Features)
}

// Clone deep-copies the feature collection: geometry is copied with
// orb.Clone and every property map is rebuilt, so writes to the copy never
// reach the loaded data.
func (c *Collection) Clone() *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	out.BBox = c.fc.BBox
	out.Features = make([]*geojson.Feature, 0, len(c.fc.Features))
	for _, f := range c.fc.Features {
		nf := &geojson.Feature{
			ID:         f.ID,
			Type:       f.Type,
			BBox:       f.BBox,
			Properties: f.Properties.Clone(),
		}
		if f.Geometry != nil {
			nf.Geometry = orb.Clone(f.Geometry)
		}
		if nf.Properties == nil {
			nf.Properties = geojson.Properties{}
		}
		out.Features = append(out.Features, nf)
	}
	return out
}

// Keys returns the join key of every feature that has one, in file order.
func (c *Collection) Keys() []string {
	keys := make([]string, 0, len(c.fc.Features))
	for _, f := range c.fc.Features {
		if k, ok := JoinKey(f); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// UsesStateAbbreviations reports whether features are keyed by two-letter
// state abbreviations ("CA") rather than FIPS codes. Only the first feature's
// top-level id is sampled.
func (c *Collection) UsesStateAbbreviations() bool {
	if len(c.fc.Features) == 0 {
		return false
	}
	id, ok := c.fc.Features[0].ID.(string)
	if !ok || len(id) != 2 {
		return false
	}
	for _, r := range id {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// JoinKey extracts a feature's join key: the first non-empty of the GEOID,
// STATEFP, STATE and FIPS properties, then the top-level id.
func JoinKey(f *geojson.Feature) (string, bool) {
	for _, name := range keyProperties {
		if k, ok := keyString(f.Properties[name]); ok {
			return k, true
		}
	}
	return keyString(f.ID)
}

// keyString accepts non-empty strings and integral, non-zero numbers.
func keyString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		if t == 0 || t != math.Trunc(t) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', 0, 64), true
	case int:
		return strconv.Itoa(t), t != 0
	default:
		return "", false
	}
}
