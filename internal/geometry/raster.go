package geometry

import (
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

// DefaultRasterGrid is the grid resolution used when converting a raster
// overlay into zone polygons.
const DefaultRasterGrid = 50

// colorTolerance is the maximum RGB distance for a pixel to count as an LCZ
// palette color. Anything farther is treated as background noise.
const colorTolerance = 30.0

type rgb struct {
	r, g, b float64
}

// ParseRaster converts a GroundOverlay raster image into grid-cell zones.
// Each cell takes the LCZ class of its dominant pixel color, matched against
// the registry's display palette; cells with no recognizable color are
// dropped.
func ParseRaster(img image.Image, box Bounds, reg *lcz.Registry, gridSize int) (*Collection, error) {
	if gridSize <= 0 {
		gridSize = DefaultRasterGrid
	}
	if box.North <= box.South || box.East <= box.West {
		return nil, eris.Errorf("geometry: degenerate overlay bounds %+v", box)
	}

	palette, err := classPalette(reg)
	if err != nil {
		return nil, err
	}

	imgBounds := img.Bounds()
	width, height := imgBounds.Dx(), imgBounds.Dy()
	if width < gridSize || height < gridSize {
		gridSize = min(width, height)
		if gridSize == 0 {
			return nil, eris.New("geometry: empty overlay image")
		}
	}

	cellW := width / gridSize
	cellH := height / gridSize
	geoCellW := (box.East - box.West) / float64(gridSize)
	geoCellH := (box.North - box.South) / float64(gridSize)

	var zones []Zone
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			x0 := imgBounds.Min.X + col*cellW
			y0 := imgBounds.Min.Y + row*cellH
			x1 := min(x0+cellW, imgBounds.Max.X)
			y1 := min(y0+cellH, imgBounds.Max.Y)

			class, ok := dominantClass(img, x0, y0, x1, y1, palette)
			if !ok {
				continue
			}

			// Image rows run north to south.
			north := box.North - float64(row)*geoCellH
			south := north - geoCellH
			west := box.West + float64(col)*geoCellW
			east := west + geoCellW

			zones = append(zones, Zone{
				ID:      fmt.Sprintf("zone-%d", len(zones)),
				Class:   class,
				Name:    fmt.Sprintf("LCZ %s - Cell %d,%d", class, row, col),
				Polygon: boxPolygon(west, south, east, north),
			})
		}
	}

	if len(zones) == 0 {
		return nil, eris.New("geometry: no LCZ cells recognized in raster overlay")
	}
	return NewCollection(zones), nil
}

// dominantClass finds the most frequent pixel color in the cell and matches
// it to the nearest palette class within tolerance.
func dominantClass(img image.Image, x0, y0, x1, y1 int, palette map[string]rgb) (string, bool) {
	counts := make(map[rgb]int)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := rgb{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
			counts[c]++
		}
	}

	var dominant rgb
	best := 0
	for c, n := range counts {
		if n > best {
			best = n
			dominant = c
		}
	}
	if best == 0 {
		return "", false
	}
	return nearestClass(dominant, palette)
}

// nearestClass returns the palette class closest to c in RGB space, if it is
// within colorTolerance.
func nearestClass(c rgb, palette map[string]rgb) (string, bool) {
	bestDist := math.Inf(1)
	var bestClass string
	for class, pc := range palette {
		d := math.Sqrt((c.r-pc.r)*(c.r-pc.r) + (c.g-pc.g)*(c.g-pc.g) + (c.b-pc.b)*(c.b-pc.b))
		if d < bestDist {
			bestDist = d
			bestClass = class
		}
	}
	if bestDist > colorTolerance {
		return "", false
	}
	return bestClass, true
}

// classPalette derives the color lookup from the registry's display colors.
func classPalette(reg *lcz.Registry) (map[string]rgb, error) {
	palette := make(map[string]rgb, reg.Len())
	for _, c := range reg.All() {
		col, err := parseHexColor(c.Color)
		if err != nil {
			return nil, eris.Wrapf(err, "geometry: class %s color", c.ID)
		}
		palette[c.ID] = col
	}
	return palette, nil
}

func parseHexColor(s string) (rgb, error) {
	if len(s) != 7 || s[0] != '#' {
		return rgb{}, eris.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return rgb{}, eris.Wrapf(err, "invalid hex color %q", s)
	}
	return rgb{
		r: float64((v >> 16) & 0xFF),
		g: float64((v >> 8) & 0xFF),
		b: float64(v & 0xFF),
	}, nil
}

func boxPolygon(west, south, east, north float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		west, south,
		east, south,
		east, north,
		west, north,
		west, south,
	}, []int{10})
}
