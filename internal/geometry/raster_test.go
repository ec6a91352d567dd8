package geometry

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

// testOverlay draws a 40x40 image split into four quadrants, one LCZ palette
// color each: compact mid-rise (top-left), dense trees (top-right), water
// (bottom-left) and white background (bottom-right).
func testOverlay() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	fill := func(x0, y0, x1, y1 int, c color.RGBA) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	fill(0, 0, 20, 20, color.RGBA{0xD1, 0x00, 0x00, 0xFF})   // LCZ 2
	fill(20, 0, 40, 20, color.RGBA{0x00, 0x6A, 0x00, 0xFF})  // LCZ 11
	fill(0, 20, 20, 40, color.RGBA{0x6A, 0x6A, 0xFF, 0xFF})  // LCZ 17
	fill(20, 20, 40, 40, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) // background
	return img
}

func TestParseRaster(t *testing.T) {
	box := Bounds{West: -52.0, South: -29.5, East: -51.9, North: -29.4}

	col, err := ParseRaster(testOverlay(), box, lcz.DefaultRegistry(), 2)
	require.NoError(t, err)
	// The white quadrant matches no palette color, so 3 of 4 cells survive.
	require.Equal(t, 3, col.Len())

	// Top-left image quadrant maps to the north-west geographic quadrant.
	class, ok := col.ClassAt(-29.425, -51.975)
	require.True(t, ok)
	assert.Equal(t, "2", class)

	class, ok = col.ClassAt(-29.425, -51.925)
	require.True(t, ok)
	assert.Equal(t, "11", class)

	class, ok = col.ClassAt(-29.475, -51.975)
	require.True(t, ok)
	assert.Equal(t, "17", class)

	_, ok = col.ClassAt(-29.475, -51.925)
	assert.False(t, ok, "background cell must be dropped")
}

func TestParseRaster_NearPaletteColor(t *testing.T) {
	// Slightly off-palette pixels (JPEG-style drift) still resolve within
	// the color tolerance.
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, color.RGBA{0xD5, 0x08, 0x05, 0xFF})
		}
	}

	box := Bounds{West: 0, South: 0, East: 1, North: 1}
	col, err := ParseRaster(img, box, lcz.DefaultRegistry(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, col.Len())
	assert.Equal(t, "2", col.Zones()[0].Class)
}

func TestParseRaster_DegenerateBounds(t *testing.T) {
	box := Bounds{West: 1, South: 1, East: 0, North: 0}
	_, err := ParseRaster(testOverlay(), box, lcz.DefaultRegistry(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degenerate overlay bounds")
}

func TestParseRaster_NoRecognizableColors(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, color.RGBA{0x80, 0x30, 0xC0, 0xFF})
		}
	}

	box := Bounds{West: 0, South: 0, East: 1, North: 1}
	_, err := ParseRaster(img, box, lcz.DefaultRegistry(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no LCZ cells recognized")
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#FF6600")
	require.NoError(t, err)
	assert.Equal(t, rgb{r: 255, g: 102, b: 0}, c)

	_, err = parseHexColor("FF6600")
	assert.Error(t, err)
	_, err = parseHexColor("#GG0000")
	assert.Error(t, err)
}
