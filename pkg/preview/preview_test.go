package preview_test

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cutsend/pkg/preview"
)

var program = []string{
	"; square cut\n",
	"G90;\n",
	"M5;\n",
	"G1 X10 Y10;\n",
	"M3 S255;\n",
	"G1 X30 Y10;\n",
	"M5;\n",
}

func TestRasterize(t *testing.T) {
	opts := preview.Options{PixelsPerMM: 2, StrokeWidth: 2}
	img, err := preview.Rasterize(program, opts)
	require.NoError(t, err)

	// 30x10 mm at 2 px/mm plus a 10 px margin on each side.
	assert.Equal(t, 80, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	// The cut runs along y=10mm, the top row of the drawing.
	assert.Less(t, img.NRGBAAt(50, 10).R, uint8(64), "cut pixel should be dark")
	assert.Equal(t, uint8(255), img.NRGBAAt(50, 30).R, "pixel away from the cut should be white")
	// Travel is hidden by default.
	assert.Equal(t, uint8(255), img.NRGBAAt(20, 20).R)
}

func TestRasterizeTravel(t *testing.T) {
	opts := preview.Options{PixelsPerMM: 2, StrokeWidth: 2, ShowTravel: true}
	img, err := preview.Rasterize(program, opts)
	require.NoError(t, err)

	travel := img.NRGBAAt(20, 20)
	assert.Less(t, travel.R, uint8(255), "travel pixel should be drawn")
	assert.Greater(t, travel.R, uint8(64), "travel should be lighter than cuts")
}

func TestRasterizeLimitsSize(t *testing.T) {
	big := []string{"M3 S255\n", "G1 X1000 Y0\n"}
	img, err := preview.Rasterize(big, preview.Options{PixelsPerMM: 10, MaxSize: 500})
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 500)
}

func TestRasterizeEmpty(t *testing.T) {
	img, err := preview.Rasterize(nil, preview.Options{})
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
}

func TestRasterizeBadProgram(t *testing.T) {
	_, err := preview.Rasterize([]string{"G1 X\n"}, preview.Options{})
	assert.Error(t, err)
}

func TestRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	require.NoError(t, preview.RenderFile(path, program, preview.Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 30*5+20, img.Bounds().Dx())
}
