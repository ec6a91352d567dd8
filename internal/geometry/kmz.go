package geometry

import (
	"archive/zip"
	"image/png"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

// LoadKMZ reads LCZ zones from a KMZ archive. Vector KMZs (placemark
// polygons) and raster KMZs (GroundOverlay PNG + LatLonBox) are both
// supported; the overlay raster is gridded into cell zones.
func LoadKMZ(zipPath string, reg *lcz.Registry) (*Collection, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geometry: open KMZ %s", zipPath)
	}
	defer r.Close() //nolint:errcheck

	kmlEntry := findEntry(&r.Reader, ".kml")
	if kmlEntry == nil {
		return nil, eris.Errorf("geometry: no KML document in %s", zipPath)
	}

	kf, err := kmlEntry.Open()
	if err != nil {
		return nil, eris.Wrap(err, "geometry: open KML entry")
	}
	doc, err := decodeKML(kf)
	_ = kf.Close()
	if err != nil {
		return nil, err
	}

	overlay := doc.Document.groundOverlay()
	if overlay == nil {
		return vectorZones(doc, reg)
	}

	zap.L().Debug("geometry: KMZ carries a raster overlay",
		zap.String("icon", overlay.Icon.Href),
	)

	imgEntry := findEntryByName(&r.Reader, path.Base(overlay.Icon.Href))
	if imgEntry == nil {
		imgEntry = findEntry(&r.Reader, ".png")
	}
	if imgEntry == nil {
		return nil, eris.Errorf("geometry: overlay image not found in %s", zipPath)
	}

	imf, err := imgEntry.Open()
	if err != nil {
		return nil, eris.Wrap(err, "geometry: open overlay image")
	}
	defer imf.Close() //nolint:errcheck

	img, err := png.Decode(imf)
	if err != nil {
		return nil, eris.Wrap(err, "geometry: decode overlay PNG")
	}

	box := Bounds{
		West:  overlay.LatLonBox.West,
		South: overlay.LatLonBox.South,
		East:  overlay.LatLonBox.East,
		North: overlay.LatLonBox.North,
	}
	return ParseRaster(img, box, reg, DefaultRasterGrid)
}

// findEntry returns the first archive entry with the given extension.
func findEntry(r *zip.Reader, ext string) *zip.File {
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(f.Name), ext) {
			return f
		}
	}
	return nil
}

// findEntryByName returns the archive entry whose base name matches.
func findEntryByName(r *zip.Reader, base string) *zip.File {
	if base == "" || base == "." {
		return nil
	}
	for _, f := range r.File {
		if path.Base(f.Name) == base {
			return f
		}
	}
	return nil
}
