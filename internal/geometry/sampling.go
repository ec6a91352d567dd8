package geometry

import (
	"math/rand"
)

// maxRejectionAttempts bounds the rejection sampling loop per point; an
// attempt lands outside the polygon when the bounding box is much larger
// than the shape.
const maxRejectionAttempts = 10

// Point is a temperature sampling location inside a zone.
type Point struct {
	Lat    float64
	Lon    float64
	ZoneID string
	Class  string
}

// SamplingPoints generates up to perZone points per zone: the centroid plus
// random points drawn inside the polygon by rejection sampling over its
// bounding box. rng may be seeded for reproducible output.
func (c *Collection) SamplingPoints(perZone int, rng *rand.Rand) []Point {
	if perZone < 1 {
		perZone = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec
	}

	points := make([]Point, 0, len(c.zones)*perZone)
	for _, z := range c.zones {
		if z.Polygon == nil {
			continue
		}
		points = append(points, Point{
			Lat:    z.CentroidLat,
			Lon:    z.CentroidLon,
			ZoneID: z.ID,
			Class:  z.Class,
		})

		b := z.Polygon.Bounds()
		for n := 1; n < perZone; n++ {
			for attempt := 0; attempt < maxRejectionAttempts; attempt++ {
				lon := b.Min(0) + rng.Float64()*(b.Max(0)-b.Min(0))
				lat := b.Min(1) + rng.Float64()*(b.Max(1)-b.Min(1))
				if containsPoint(z.Polygon, lon, lat) {
					points = append(points, Point{
						Lat:    lat,
						Lon:    lon,
						ZoneID: z.ID,
						Class:  z.Class,
					})
					break
				}
			}
		}
	}
	return points
}
