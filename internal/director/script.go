package director

import (
	"time"

	"github.com/ivlev/twinkle/internal/effects"
)

// ScriptVersion is written into new scripts
const ScriptVersion = "1.0"

// Script is a timed list of effect cues played on one stage
type Script struct {
	Version string `yaml:"version"`
	Stage   Stage  `yaml:"stage"`
	Cues    []Cue  `yaml:"cues"`
}

// Stage describes the surface a script is played on
type Stage struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background,omitempty"` // CSS colour
	Backdrop   string `yaml:"backdrop,omitempty"`   // image or PDF path
	Page       int    `yaml:"page,omitempty"`       // PDF page, 1-based
}

// Cue triggers one effect at a point in time
type Cue struct {
	At      float64         `yaml:"at"` // milliseconds from script start
	Effect  string          `yaml:"effect"`
	X       float64         `yaml:"x"`
	Y       float64         `yaml:"y"`
	Options effects.Options `yaml:"options,omitempty"`
}

// Offset converts the cue start time
func (c Cue) Offset() time.Duration {
	return time.Duration(c.At * float64(time.Millisecond))
}
