package geometry

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

// Load reads a zone collection from a file, dispatching on its extension.
// Supported: .kml, .kmz, .geojson, .json, .shp.
func Load(path string, reg *lcz.Registry) (*Collection, error) {
	var (
		col *Collection
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".kml":
		col, err = loadFile(path, reg, ParseKML)
	case ".kmz":
		col, err = LoadKMZ(path, reg)
	case ".geojson", ".json":
		col, err = loadFile(path, reg, ParseGeoJSON)
	case ".shp":
		col, err = LoadShapefile(path, reg)
	default:
		return nil, eris.Errorf("geometry: unsupported zone file format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("zone collection loaded",
		zap.String("file", path),
		zap.Int("zones", col.Len()),
		zap.Strings("classes", col.Classes()),
	)
	return col, nil
}

func loadFile(path string, reg *lcz.Registry, parse func(r io.Reader, reg *lcz.Registry) (*Collection, error)) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geometry: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return parse(f, reg)
}
