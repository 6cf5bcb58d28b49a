package engine

import (
	"github.com/google/uuid"

	"github.com/ivlev/twinkle/internal/canvas"
)

// DefaultZIndex layers overlays above regular host content
const DefaultZIndex = 1000

// Position is an anchor point in host coordinates
type Position struct {
	Left float64 `yaml:"left"`
	Top  float64 `yaml:"top"`
}

// Trigger identifies where an effect was invoked: the host element and the
// point the overlay is centred on.
type Trigger struct {
	Element  Host
	Position Position
}

// Overlay describes a surface layered above the host content
type Overlay struct {
	ID     uuid.UUID
	Left   float64
	Top    float64
	Width  int
	Height int
	ZIndex int
}

// Host is the element container overlays are attached to
type Host interface {
	// Mount creates and attaches a drawing surface for o.
	Mount(o Overlay) (canvas.Surface, error)
	// Unmount detaches and discards the surface of overlay id.
	Unmount(id uuid.UUID) error
}

// FrameEvent describes one animation tick. It is only valid during the
// callback that receives it.
type FrameEvent struct {
	Ctx    *canvas.Context
	Frac   float64
	Millis float64
}

// FrameFunc paints one frame
type FrameFunc func(ev FrameEvent)
