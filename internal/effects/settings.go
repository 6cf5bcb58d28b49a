package effects

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/twinkle/internal/interpolator"
)

// DefaultFPS is the frame rate of every built-in effect
const DefaultFPS = 25

// Settings is the full configuration of one effect run. Keys follow the
// option names callers pass in.
type Settings struct {
	Color            string  `yaml:"color"`
	Radius           float64 `yaml:"radius"`
	Duration         float64 `yaml:"duration"` // milliseconds
	Width            float64 `yaml:"width"`    // stroke width
	Count            int     `yaml:"count"`
	Delay            float64 `yaml:"delay"` // milliseconds
	Satellites       int     `yaml:"satellites"`
	SatellitesRadius float64 `yaml:"satellitesRadius"`
	Circulations     float64 `yaml:"circulations"`
	FPS              float64 `yaml:"fps"`
	Easing           string  `yaml:"easing"`
}

// Options are caller overrides, merged shallowly over an effect's defaults
type Options map[string]any

// Alternative spellings accepted in Options
var aliases = map[string]string{
	"duration_ms": "duration",
	"strokeWidth": "width",
	"delay_ms":    "delay",
}

// settingKeys holds the yaml keys of Settings
var settingKeys = func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(Settings{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}()

// Merge overlays opts on defaults. Unknown keys are ignored, missing keys
// keep their default.
func Merge(defaults Settings, opts Options) (Settings, error) {
	out := defaults
	if len(opts) == 0 {
		return out, nil
	}

	known := make(map[string]any, len(opts))
	for k, v := range opts {
		if canonical, ok := aliases[k]; ok {
			k = canonical
		}
		if settingKeys[k] {
			known[k] = v
		}
	}
	if len(known) == 0 {
		return out, nil
	}

	data, err := encodeOptions(known)
	if err != nil {
		return defaults, err
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return defaults, fmt.Errorf("decode options: %w", err)
	}
	return out, nil
}

// encodeOptions turns the encoder's panics on unsupported values into errors
func encodeOptions(opts map[string]any) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("encode options: %v", r)
		}
	}()
	data, err = yaml.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	return data, nil
}

// DurationValue converts the millisecond duration
func (s Settings) DurationValue() time.Duration {
	return time.Duration(s.Duration * float64(time.Millisecond))
}

// Size is the side of the square overlay
func (s Settings) Size() int {
	return int(s.Radius * 2)
}

func (s Settings) validate(id string) error {
	if s.Radius <= 0 {
		return fmt.Errorf("%s: radius must be positive, got %v", id, s.Radius)
	}
	if s.Size() < 1 {
		return fmt.Errorf("%s: radius %v is too small", id, s.Radius)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("%s: duration must be positive, got %v", id, s.Duration)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("%s: fps must be positive, got %v", id, s.FPS)
	}
	if s.Color == "" {
		return fmt.Errorf("%s: color is empty", id)
	}
	return nil
}

func (s Settings) easing() (interpolator.Easing, error) {
	return interpolator.EasingByName(s.Easing)
}
