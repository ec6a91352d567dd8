// Package geometry loads Local Climate Zone polygons from KML, KMZ,
// GeoJSON, and shapefile sources and answers spatial questions about them.
package geometry

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
)

// kmPerDegree is the meridian arc length of one degree, used for the
// equirectangular area approximation.
const kmPerDegree = 111.32

// Zone is one LCZ polygon with its canonical class code.
type Zone struct {
	ID          string
	Class       string
	Name        string
	Polygon     *geom.Polygon
	CentroidLat float64
	CentroidLon float64
	AreaKM2     float64
}

// Bounds is a geographic bounding box in degrees.
type Bounds struct {
	West  float64
	South float64
	East  float64
	North float64
}

// Center returns the midpoint of the box as (lat, lon).
func (b Bounds) Center() (float64, float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}

// Collection is an immutable set of zones loaded from one source file.
type Collection struct {
	zones []Zone
}

// NewCollection wraps zones in a Collection, deriving centroid and area for
// any zone that does not carry them yet.
func NewCollection(zones []Zone) *Collection {
	for i := range zones {
		z := &zones[i]
		if z.Polygon == nil {
			continue
		}
		if z.CentroidLat == 0 && z.CentroidLon == 0 {
			z.CentroidLon, z.CentroidLat = centroid(z.Polygon)
		}
		if z.AreaKM2 == 0 {
			z.AreaKM2 = areaKM2(z.Polygon)
		}
	}
	return &Collection{zones: zones}
}

// Zones returns the zones in load order. The slice must not be mutated.
func (c *Collection) Zones() []Zone {
	return c.zones
}

// Len returns the number of zones.
func (c *Collection) Len() int {
	return len(c.zones)
}

// Zone returns the zone with the given id.
func (c *Collection) Zone(id string) (Zone, bool) {
	for _, z := range c.zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// Classes returns the distinct class codes present, in first-seen order.
func (c *Collection) Classes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, z := range c.zones {
		if !seen[z.Class] {
			seen[z.Class] = true
			out = append(out, z.Class)
		}
	}
	return out
}

// Bounds returns the bounding box covering all zones. ok is false for an
// empty collection.
func (c *Collection) Bounds() (Bounds, bool) {
	if len(c.zones) == 0 {
		return Bounds{}, false
	}
	b := Bounds{West: math.Inf(1), South: math.Inf(1), East: math.Inf(-1), North: math.Inf(-1)}
	for _, z := range c.zones {
		if z.Polygon == nil {
			continue
		}
		zb := z.Polygon.Bounds()
		b.West = math.Min(b.West, zb.Min(0))
		b.South = math.Min(b.South, zb.Min(1))
		b.East = math.Max(b.East, zb.Max(0))
		b.North = math.Max(b.North, zb.Max(1))
	}
	if math.IsInf(b.West, 1) {
		return Bounds{}, false
	}
	return b, true
}

// ZoneAt returns the first zone whose polygon contains the point.
func (c *Collection) ZoneAt(lat, lon float64) (Zone, bool) {
	for _, z := range c.zones {
		if z.Polygon != nil && containsPoint(z.Polygon, lon, lat) {
			return z, true
		}
	}
	return Zone{}, false
}

// ClassAt returns the LCZ class code at the point, if any zone covers it.
func (c *Collection) ClassAt(lat, lon float64) (string, bool) {
	z, ok := c.ZoneAt(lat, lon)
	if !ok {
		return "", false
	}
	return z.Class, true
}

// FeatureCollection renders the zones as GeoJSON for the map UI.
func (c *Collection) FeatureCollection() *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(c.zones))}
	for _, z := range c.zones {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       z.ID,
			Geometry: z.Polygon,
			Properties: map[string]interface{}{
				"lcz_class":    z.Class,
				"name":         z.Name,
				"area_km2":     z.AreaKM2,
				"centroid_lat": z.CentroidLat,
				"centroid_lon": z.CentroidLon,
			},
		})
	}
	return fc
}

// containsPoint reports whether the polygon covers (lon, lat): inside the
// exterior ring and outside every hole.
func containsPoint(p *geom.Polygon, lon, lat float64) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	coord := geom.Coord{lon, lat}
	if !xy.IsPointInRing(p.Layout(), coord, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), coord, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// centroid computes the centroid of the exterior ring, falling back to the
// bounds midpoint for degenerate rings.
func centroid(p *geom.Polygon) (lon, lat float64) {
	if p.NumLinearRings() == 0 {
		return 0, 0
	}
	flat := p.LinearRing(0).FlatCoords()
	stride := p.Layout().Stride()

	var cx, cy, area2 float64
	for i := 0; i+stride < len(flat); i += stride {
		x0, y0 := flat[i], flat[i+1]
		x1, y1 := flat[i+stride], flat[i+stride+1]
		cross := x0*y1 - x1*y0
		area2 += cross
		cx += (x0 + x1) * cross
		cy += (y0 + y1) * cross
	}
	if area2 == 0 {
		b := p.Bounds()
		return (b.Min(0) + b.Max(0)) / 2, (b.Min(1) + b.Max(1)) / 2
	}
	return cx / (3 * area2), cy / (3 * area2)
}

// areaKM2 approximates the polygon area in square kilometers using an
// equirectangular projection at the polygon's mid latitude.
func areaKM2(p *geom.Polygon) float64 {
	deg2 := math.Abs(p.Area())
	if deg2 == 0 {
		return 0
	}
	b := p.Bounds()
	midLat := (b.Min(1) + b.Max(1)) / 2
	return deg2 * kmPerDegree * kmPerDegree * math.Cos(midLat*math.Pi/180)
}
