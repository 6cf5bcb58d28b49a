package stage

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/twinkle/internal/canvas"
	"github.com/ivlev/twinkle/internal/engine"
)

func overlay(left, top float64, size, z int) engine.Overlay {
	return engine.Overlay{ID: uuid.New(), Left: left, Top: top, Width: size, Height: size, ZIndex: z}
}

func present(s canvas.Surface) {
	s.(canvas.Presenter).Present()
}

func TestMountUnmount(t *testing.T) {
	s := NewStage(100, 100, nil)
	o := overlay(10, 10, 20, engine.DefaultZIndex)

	surface, err := s.Mount(o)
	require.NoError(t, err)
	require.NotNil(t, surface)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Unmount(o.ID))
	assert.Equal(t, 0, s.Len())
	assert.True(t, errors.Is(s.Unmount(o.ID), ErrNotMounted))

	_, err = s.Mount(overlay(0, 0, 0, 0))
	assert.Error(t, err)
}

func TestComposeDrawsOverlays(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 100, 100))
	draw.Draw(bg, bg.Rect, image.NewUniform(color.RGBA{B: 255, A: 255}), image.Point{}, draw.Src)
	s := NewStage(100, 100, bg)

	o := overlay(40, 40, 20, engine.DefaultZIndex)
	surface, err := s.Mount(o)
	require.NoError(t, err)
	canvas.NewContext(surface, 20, 20).Path().Circle(10, 10, 10).Fill("red")

	img := s.Compose()
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(50, 50), "unpresented drawing stays hidden")
	s.Release(img)

	present(surface)
	img = s.Compose()
	defer s.Release(img)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(50, 50))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(5, 5))
}

func TestComposeOrdersByZIndex(t *testing.T) {
	s := NewStage(20, 20, nil)

	top, err := s.Mount(overlay(0, 0, 20, 2000))
	require.NoError(t, err)
	bottom, err := s.Mount(overlay(0, 0, 20, 10))
	require.NoError(t, err)

	canvas.NewContext(bottom, 20, 20).Path().Circle(10, 10, 10).Fill("red")
	canvas.NewContext(top, 20, 20).Path().Circle(10, 10, 10).Fill("lime")
	present(bottom)
	present(top)

	img := s.Compose()
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(10, 10))
	s.Release(img)

	// A released buffer is cleared again on the next compose
	require.NoError(t, s.Unmount(s.layers[0].overlay.ID))
	require.NoError(t, s.Unmount(s.layers[0].overlay.ID))
	img = s.Compose()
	assert.Equal(t, uint8(0), img.RGBAAt(10, 10).A)
}

func TestCenter(t *testing.T) {
	s := NewStage(640, 480, nil)
	assert.Equal(t, engine.Position{Left: 320, Top: 240}, s.Center())
	w, h := s.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}
