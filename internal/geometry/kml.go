package geometry

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

// KML document model. Only the elements the loader needs are mapped; WUDAPT
// exports nest one Folder per LCZ class with the class code as folder name.
type kmlFile struct {
	XMLName  xml.Name    `xml:"kml"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name           string             `xml:"name"`
	Folders        []kmlFolder        `xml:"Folder"`
	Placemarks     []kmlPlacemark     `xml:"Placemark"`
	GroundOverlays []kmlGroundOverlay `xml:"GroundOverlay"`
}

type kmlFolder struct {
	Name           string             `xml:"name"`
	Folders        []kmlFolder        `xml:"Folder"`
	Placemarks     []kmlPlacemark     `xml:"Placemark"`
	GroundOverlays []kmlGroundOverlay `xml:"GroundOverlay"`
}

type kmlPlacemark struct {
	Name          string            `xml:"name"`
	Polygon       *kmlPolygon       `xml:"Polygon"`
	MultiGeometry *kmlMultiGeometry `xml:"MultiGeometry"`
}

type kmlMultiGeometry struct {
	Polygons []kmlPolygon `xml:"Polygon"`
}

type kmlPolygon struct {
	Outer kmlBoundary   `xml:"outerBoundaryIs"`
	Inner []kmlBoundary `xml:"innerBoundaryIs"`
}

type kmlBoundary struct {
	Ring kmlLinearRing `xml:"LinearRing"`
}

type kmlLinearRing struct {
	Coordinates string `xml:"coordinates"`
}

type kmlGroundOverlay struct {
	Name      string       `xml:"name"`
	Icon      kmlIcon      `xml:"Icon"`
	LatLonBox kmlLatLonBox `xml:"LatLonBox"`
}

type kmlIcon struct {
	Href string `xml:"href"`
}

type kmlLatLonBox struct {
	North float64 `xml:"north"`
	South float64 `xml:"south"`
	East  float64 `xml:"east"`
	West  float64 `xml:"west"`
}

// ParseKML reads vector LCZ zones from a KML document. The class code is
// taken from the enclosing folder name when it resolves in the registry,
// otherwise from the placemark name. Placemarks with no resolvable class
// are skipped.
func ParseKML(r io.Reader, reg *lcz.Registry) (*Collection, error) {
	doc, err := decodeKML(r)
	if err != nil {
		return nil, err
	}
	return vectorZones(doc, reg)
}

// vectorZones extracts placemark polygons from a decoded KML document.
func vectorZones(doc *kmlFile, reg *lcz.Registry) (*Collection, error) {
	var zones []Zone
	collect := func(folderName string, pms []kmlPlacemark) {
		for _, pm := range pms {
			class, ok := resolveClass(reg, folderName, pm.Name)
			if !ok {
				zap.L().Debug("geometry: skipping placemark with unknown class",
					zap.String("folder", folderName),
					zap.String("placemark", pm.Name),
				)
				continue
			}
			for _, kp := range pm.polygons() {
				poly, err := kp.toGeom()
				if err != nil {
					zap.L().Warn("geometry: skipping malformed polygon",
						zap.String("placemark", pm.Name),
						zap.Error(err),
					)
					continue
				}
				name := pm.Name
				if name == "" {
					name = fmt.Sprintf("LCZ %s", class)
				}
				zones = append(zones, Zone{
					ID:      fmt.Sprintf("zone-%d", len(zones)),
					Class:   class,
					Name:    name,
					Polygon: poly,
				})
			}
		}
	}

	var walk func(folders []kmlFolder)
	walk = func(folders []kmlFolder) {
		for _, f := range folders {
			collect(f.Name, f.Placemarks)
			walk(f.Folders)
		}
	}
	collect("", doc.Document.Placemarks)
	walk(doc.Document.Folders)

	if len(zones) == 0 {
		return nil, eris.New("geometry: no LCZ zones found in KML")
	}
	return NewCollection(zones), nil
}

func decodeKML(r io.Reader) (*kmlFile, error) {
	var doc kmlFile
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "geometry: decode KML")
	}
	return &doc, nil
}

// groundOverlay returns the first GroundOverlay in the document, if any.
// KMZ exports of raster LCZ maps carry exactly one.
func (d *kmlDocument) groundOverlay() *kmlGroundOverlay {
	if len(d.GroundOverlays) > 0 {
		return &d.GroundOverlays[0]
	}
	var find func(folders []kmlFolder) *kmlGroundOverlay
	find = func(folders []kmlFolder) *kmlGroundOverlay {
		for i := range folders {
			if len(folders[i].GroundOverlays) > 0 {
				return &folders[i].GroundOverlays[0]
			}
			if g := find(folders[i].Folders); g != nil {
				return g
			}
		}
		return nil
	}
	return find(d.Folders)
}

func (pm *kmlPlacemark) polygons() []kmlPolygon {
	if pm.Polygon != nil {
		return []kmlPolygon{*pm.Polygon}
	}
	if pm.MultiGeometry != nil {
		return pm.MultiGeometry.Polygons
	}
	return nil
}

// resolveClass picks the canonical class code from the folder or placemark
// name, whichever resolves first.
func resolveClass(reg *lcz.Registry, folderName, placemarkName string) (string, bool) {
	for _, candidate := range []string{folderName, placemarkName} {
		if candidate == "" {
			continue
		}
		c := lcz.Canonical(candidate)
		if reg.Contains(c) {
			return c, true
		}
	}
	return "", false
}

func (kp *kmlPolygon) toGeom() (*geom.Polygon, error) {
	poly := geom.NewPolygon(geom.XY)

	outer, err := parseCoordinates(kp.Outer.Ring.Coordinates)
	if err != nil {
		return nil, err
	}
	if err := poly.Push(geom.NewLinearRingFlat(geom.XY, outer)); err != nil {
		return nil, eris.Wrap(err, "geometry: push outer ring")
	}

	for _, inner := range kp.Inner {
		flat, err := parseCoordinates(inner.Ring.Coordinates)
		if err != nil {
			return nil, err
		}
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			return nil, eris.Wrap(err, "geometry: push inner ring")
		}
	}
	return poly, nil
}

// parseCoordinates parses a KML coordinate list ("lon,lat[,alt]" tuples
// separated by whitespace) into flat XY pairs.
func parseCoordinates(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return nil, eris.Errorf("geometry: ring has %d coordinates, need at least 3", len(fields))
	}
	flat := make([]float64, 0, len(fields)*2)
	for _, f := range fields {
		parts := strings.Split(f, ",")
		if len(parts) < 2 {
			return nil, eris.Errorf("geometry: malformed coordinate %q", f)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, eris.Wrapf(err, "geometry: parse longitude %q", parts[0])
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, eris.Wrapf(err, "geometry: parse latitude %q", parts[1])
		}
		flat = append(flat, lon, lat)
	}
	return flat, nil
}
