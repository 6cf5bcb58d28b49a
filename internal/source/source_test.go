package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 2, color.White)
	writePNG(t, filepath.Join(dir, "a.PNG"), 8, 6, color.Black)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	src, err := Open(dir)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, 2, src.PageCount())

	w, h, err := src.GetPageDimensions(0)
	require.NoError(t, err)
	assert.Equal(t, 8.0, w)
	assert.Equal(t, 6.0, h)

	img, err := src.RenderPage(1, 150)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())

	_, err = src.RenderPage(2, 150)
	assert.Error(t, err)
	_, _, err = src.GetPageDimensions(-1)
	assert.Error(t, err)
}

func TestImageSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	writePNG(t, path, 3, 3, color.White)

	src, err := Open(path)
	require.NoError(t, err)
	assert.IsType(t, &ImageSource{}, src)
	assert.Equal(t, 1, src.PageCount())

	_, err = Open(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}

	dst := Fit(src, 40, 40)
	assert.Equal(t, image.Rect(0, 0, 40, 40), dst.Bounds())

	// 100x50 scaled to 40x20 and centred vertically
	assert.Equal(t, uint8(0), dst.RGBAAt(20, 5).A)
	assert.Equal(t, uint8(0xff), dst.RGBAAt(20, 20).A)
	assert.Equal(t, uint8(0), dst.RGBAAt(20, 35).A)

	empty := Fit(image.NewRGBA(image.Rectangle{}), 10, 10)
	assert.Equal(t, image.Rect(0, 0, 10, 10), empty.Bounds())
}
