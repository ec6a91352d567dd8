package geometry

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

// ParseGeoJSON reads LCZ zones from a GeoJSON FeatureCollection. Each
// feature must carry its class in an `lcz_class` property (string or
// number); features without a resolvable class are skipped.
func ParseGeoJSON(r io.Reader, reg *lcz.Registry) (*Collection, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "geometry: read GeoJSON")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, eris.Wrap(err, "geometry: decode GeoJSON")
	}

	var zones []Zone
	for i, feat := range fc.Features {
		class, ok := featureClass(reg, feat.Properties)
		if !ok {
			zap.L().Debug("geometry: skipping feature without LCZ class", zap.Int("index", i))
			continue
		}
		polys := polygonsOf(feat.Geometry)
		for part, poly := range polys {
			name, _ := feat.Properties["name"].(string)
			if name == "" {
				name = fmt.Sprintf("LCZ %s", class)
			}
			id := feat.ID
			if id == "" {
				id = fmt.Sprintf("zone-%d", len(zones))
			} else if len(polys) > 1 {
				// A multi-part feature expands to one zone per polygon;
				// keep the ids distinct so Collection.Zone finds each part.
				id = fmt.Sprintf("%s-%d", id, part)
			}
			zones = append(zones, Zone{
				ID:      id,
				Class:   class,
				Name:    name,
				Polygon: poly,
			})
		}
	}

	if len(zones) == 0 {
		return nil, eris.New("geometry: no LCZ zones found in GeoJSON")
	}
	return NewCollection(zones), nil
}

// featureClass resolves the lcz_class property against the registry.
func featureClass(reg *lcz.Registry, props map[string]interface{}) (string, bool) {
	v, ok := props["lcz_class"]
	if !ok {
		return "", false
	}
	var code string
	switch t := v.(type) {
	case string:
		code = t
	case float64:
		code = fmt.Sprintf("%d", int(t))
	default:
		return "", false
	}
	c := lcz.Canonical(code)
	return c, reg.Contains(c)
}

// polygonsOf flattens a geometry into its component polygons.
func polygonsOf(g geom.T) []*geom.Polygon {
	switch t := g.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{t}
	case *geom.MultiPolygon:
		polys := make([]*geom.Polygon, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			polys = append(polys, t.Polygon(i))
		}
		return polys
	default:
		return nil
	}
}
