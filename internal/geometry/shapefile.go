package geometry

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

// classFieldNames are the attribute names probed for the LCZ class code.
var classFieldNames = []string{"LCZ", "LCZ_CLASS", "CLASS"}

// LoadShapefile reads LCZ zones from an ESRI shapefile whose attribute
// table carries the class code.
func LoadShapefile(shpPath string, reg *lcz.Registry) (*Collection, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geometry: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	classIdx := -1
	for _, name := range classFieldNames {
		if idx := fieldIndex(reader, name); idx >= 0 {
			classIdx = idx
			break
		}
	}
	if classIdx < 0 {
		return nil, eris.Errorf("geometry: no LCZ class field (%s) in shapefile",
			strings.Join(classFieldNames, ", "))
	}
	nameIdx := fieldIndex(reader, "NAME")

	var zones []Zone
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			continue
		}

		class := lcz.Canonical(reader.Attribute(classIdx))
		if !reg.Contains(class) {
			zap.L().Debug("geometry: skipping shape with unknown class",
				zap.String("class", class),
			)
			continue
		}

		name := ""
		if nameIdx >= 0 {
			name = strings.TrimSpace(reader.Attribute(nameIdx))
		}
		if name == "" {
			name = fmt.Sprintf("LCZ %s", class)
		}

		for _, g := range polygonParts(poly) {
			zones = append(zones, Zone{
				ID:      fmt.Sprintf("zone-%d", len(zones)),
				Class:   class,
				Name:    name,
				Polygon: g,
			})
		}
	}

	if len(zones) == 0 {
		return nil, eris.New("geometry: no LCZ zones found in shapefile")
	}
	return NewCollection(zones), nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if
// not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// polygonParts converts each ring of a shapefile polygon into its own
// geom.Polygon.
func polygonParts(p *shp.Polygon) []*geom.Polygon {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	polys := make([]*geom.Polygon, 0, p.NumParts)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		if len(flat) < 6 {
			continue
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("geometry: skipping malformed shapefile ring",
				zap.Int32("part", i), zap.Error(err))
			continue
		}
		polys = append(polys, poly)
	}
	return polys
}
