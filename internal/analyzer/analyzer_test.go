package analyzer

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func TestContrastDetector(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	fillRect(img, img.Rect, color.Black)
	fillRect(img, image.Rect(50, 50, 150, 150), color.White)

	regions, err := NewContrastDetector().Detect(img)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0].Rect
	assert.True(t, r.Dx() >= 100 && r.Dx() <= 115, "width %d", r.Dx())
	assert.True(t, r.Dy() >= 100 && r.Dy() <= 115, "height %d", r.Dy())
	assert.Equal(t, image.Pt(100, 100), regions[0].Center())
	assert.Greater(t, regions[0].Weight, 0.0)
	assert.Less(t, regions[0].Weight, 1.0)
}

func TestContrastDetectorOrdersByWeight(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 300, 120))
	fillRect(img, img.Rect, color.Black)

	// A large plain block has few edges for its area
	fillRect(img, image.Rect(10, 10, 110, 110), color.White)

	// A striped block is edge-dense
	for x := 180; x < 260; x += 6 {
		fillRect(img, image.Rect(x, 30, x+3, 90), color.White)
	}

	// A speck is below the area limit
	fillRect(img, image.Rect(280, 5, 282, 7), color.White)

	regions, err := NewContrastDetector().Detect(img)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Greater(t, regions[0].Center().X, 150)
	assert.Less(t, regions[1].Center().X, 150)
	assert.Greater(t, regions[0].Weight, regions[1].Weight)
}

func TestDetectTooSmall(t *testing.T) {
	_, err := NewContrastDetector().Detect(image.NewGray(image.Rect(0, 0, 2, 2)))
	assert.Error(t, err)
}

func TestDilate(t *testing.T) {
	w, h := 7, 5
	mask := make([]bool, w*h)
	mask[2*w+3] = true

	out := dilate(mask, w, h, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := x >= 2 && x <= 4 && y >= 1 && y <= 3
			assert.Equal(t, want, out[y*w+x], "(%d,%d)", x, y)
		}
	}
	assert.Equal(t, mask, dilate(mask, w, h, 0))
}

func TestComponents(t *testing.T) {
	w := 4
	// Marks at the end of row 0 and the start of row 1 must not join
	mask := []bool{
		false, false, false, true,
		true, false, false, false,
		true, false, false, false,
	}
	rects := components(mask, w)
	require.Len(t, rects, 2)
	assert.Equal(t, image.Rect(3, 0, 4, 1), rects[0])
	assert.Equal(t, image.Rect(0, 1, 1, 3), rects[1])
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"contrast", false},
		{"", false},
		{"ocr", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, detector)
		})
	}
}
