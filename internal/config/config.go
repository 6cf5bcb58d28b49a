package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/twinkle/internal/effects"
)

type Config struct {
	Effects      []string `yaml:"effects"`
	OptionsPath  string   `yaml:"options"`
	ScriptPath   string   `yaml:"script"`
	Output       string   `yaml:"output"`
	Format       string   `yaml:"format"`
	Reel         bool     `yaml:"reel"`
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	X            float64  `yaml:"x"`
	Y            float64  `yaml:"y"`
	FPS          float64  `yaml:"fps"`
	Workers      int      `yaml:"workers"`
	Backdrop     string   `yaml:"backdrop"`
	Page         int      `yaml:"page"`
	DPI          int      `yaml:"dpi"`
	Background   string   `yaml:"background"`
	VideoEncoder string   `yaml:"encoder"`
	Quality      int      `yaml:"quality"`
	ShowStats    bool     `yaml:"stats"`
	Tint         bool     `yaml:"tint"` // suggest: a hue per cue
	BuildVersion string   `yaml:"-"`

	// Options are per-effect overrides, keyed by effect id
	Options map[string]effects.Options `yaml:"-"`
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		Effects:    []string{"splash"},
		Output:     "output",
		Format:     "png",
		Width:      1280,
		Height:     720,
		Workers:    4,
		Page:       1,
		DPI:        150,
		Background: "black",
	}
}

// Load overlays a YAML file on the defaults
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptions reads per-effect overrides. The file maps effect ids to
// option maps:
//
//	splash:
//	  radius: 120
//	  color: "#ffcc00"
func LoadOptions(path string) (map[string]effects.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := make(map[string]effects.Options)
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return opts, nil
}

// EffectOptions returns the overrides for one effect, with the fps override
// applied when set
func (c *Config) EffectOptions(id string) effects.Options {
	opts := effects.Options{}
	for k, v := range c.Options[id] {
		opts[k] = v
	}
	if c.FPS > 0 {
		opts["fps"] = c.FPS
	}
	return opts
}

// Validate checks the values and normalizes what it can. Odd frame sizes are
// rounded up because yuv420p needs even dimensions.
func (c *Config) Validate() error {
	var errs []error

	c.Format = strings.ToLower(c.Format)
	if c.Format != "png" && c.Format != "mp4" {
		errs = append(errs, fmt.Errorf("format must be png or mp4, got %q", c.Format))
	}
	if c.Reel && c.Format != "mp4" {
		errs = append(errs, fmt.Errorf("reel needs mp4 output"))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid stage size %dx%d", c.Width, c.Height))
	}
	if c.Width%2 != 0 {
		c.Width++
	}
	if c.Height%2 != 0 {
		c.Height++
	}
	if c.FPS < 0 {
		errs = append(errs, fmt.Errorf("fps must not be negative, got %v", c.FPS))
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Page < 1 {
		errs = append(errs, fmt.Errorf("page is 1-based, got %d", c.Page))
	}
	if c.DPI <= 0 {
		errs = append(errs, fmt.Errorf("dpi must be positive, got %d", c.DPI))
	}
	if c.Output == "" {
		errs = append(errs, fmt.Errorf("output is empty"))
	}
	if c.ScriptPath == "" && len(c.Effects) == 0 {
		errs = append(errs, fmt.Errorf("no effects to render"))
	}
	if c.Quality < 0 {
		errs = append(errs, fmt.Errorf("quality must not be negative, got %d", c.Quality))
	}

	return errors.Join(errs...)
}

// Position returns the trigger point, the stage centre unless set
func (c *Config) Position() (float64, float64) {
	x, y := c.X, c.Y
	if x == 0 && y == 0 {
		x, y = float64(c.Width)/2, float64(c.Height)/2
	}
	return x, y
}
