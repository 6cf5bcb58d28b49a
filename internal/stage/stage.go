package stage

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ivlev/twinkle/internal/canvas"
	"github.com/ivlev/twinkle/internal/engine"
	"github.com/ivlev/twinkle/internal/renderer"
	"github.com/ivlev/twinkle/internal/system"
)

// ErrNotMounted is returned when unmounting an unknown overlay
var ErrNotMounted = errors.New("overlay is not mounted")

type layer struct {
	overlay engine.Overlay
	surface *renderer.Raster
}

// Stage is an in-memory host element. Overlays mounted on it are raster
// surfaces composed above an optional background.
type Stage struct {
	mu         sync.Mutex
	width      int
	height     int
	background image.Image
	layers     []*layer
	pool       *system.ImagePool
}

var _ engine.Host = (*Stage)(nil)

// NewStage creates a stage of the given size. background may be nil.
func NewStage(width, height int, background image.Image) *Stage {
	return &Stage{
		width:      width,
		height:     height,
		background: background,
		pool:       system.NewImagePool(),
	}
}

// Size returns the stage dimensions
func (s *Stage) Size() (int, int) {
	return s.width, s.height
}

// Center returns the middle of the stage
func (s *Stage) Center() engine.Position {
	return engine.Position{Left: float64(s.width) / 2, Top: float64(s.height) / 2}
}

// Mount creates a raster surface for the overlay
func (s *Stage) Mount(o engine.Overlay) (canvas.Surface, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("invalid overlay size %dx%d", o.Width, o.Height)
	}

	surface := renderer.NewRaster(o.Width, o.Height)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = append(s.layers, &layer{overlay: o, surface: surface})
	sort.SliceStable(s.layers, func(i, j int) bool {
		return s.layers[i].overlay.ZIndex < s.layers[j].overlay.ZIndex
	})
	return surface, nil
}

// Unmount removes an overlay
func (s *Stage) Unmount(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.layers {
		if l.overlay.ID == id {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotMounted, id)
}

// Len returns the number of mounted overlays
func (s *Stage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.layers)
}

// Compose renders the background and every mounted overlay into a pooled
// image. Hand it back with Release when done.
func (s *Stage) Compose() *image.RGBA {
	rect := image.Rect(0, 0, s.width, s.height)
	dst := s.pool.Get(rect)
	if s.background != nil {
		draw.Draw(dst, rect, s.background, s.background.Bounds().Min, draw.Src)
	} else {
		clear(dst.Pix)
	}

	s.mu.Lock()
	layers := make([]*layer, len(s.layers))
	copy(layers, s.layers)
	s.mu.Unlock()

	for _, l := range layers {
		at := image.Pt(int(math.Round(l.overlay.Left)), int(math.Round(l.overlay.Top)))
		l.surface.DrawTo(dst, at)
	}
	return dst
}

// Release returns a composed image to the pool
func (s *Stage) Release(img *image.RGBA) {
	s.pool.Put(img)
}
