package director

import (
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/twinkle/internal/analyzer"
	"github.com/ivlev/twinkle/internal/effects"
)

// Suggester turns detected regions into a script that highlights them one
// after another in reading order
type Suggester struct {
	Width     int
	Height    int
	Effect    string
	MaxCues   int
	Spacing   float64 // milliseconds between cues
	MinRadius float64
	MaxRadius float64
	Tint      bool // give every cue its own hue
}

// NewSuggester creates a Suggester with default pacing
func NewSuggester(width, height int, effect string) *Suggester {
	return &Suggester{
		Width:     width,
		Height:    height,
		Effect:    effect,
		MaxCues:   8,
		Spacing:   600,
		MinRadius: 20,
		MaxRadius: 300,
	}
}

// Suggest builds a script from regions. The heaviest MaxCues regions are
// kept and played top-to-bottom, left-to-right.
func (s *Suggester) Suggest(regions []analyzer.Region) (*Script, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions detected")
	}

	picked := make([]analyzer.Region, len(regions))
	copy(picked, regions)
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Weight > picked[j].Weight
	})
	if s.MaxCues > 0 && len(picked) > s.MaxCues {
		picked = picked[:s.MaxCues]
	}
	picked = s.sortRegions(picked)

	script := &Script{
		Version: ScriptVersion,
		Stage:   Stage{Width: s.Width, Height: s.Height},
	}
	for i, r := range picked {
		c := r.Center()
		opts := effects.Options{"radius": s.radius(r)}
		if s.Tint {
			opts["color"] = hue(i, len(picked))
		}
		script.Cues = append(script.Cues, Cue{
			At:      float64(i) * s.Spacing,
			Effect:  s.Effect,
			X:       float64(c.X),
			Y:       float64(c.Y),
			Options: opts,
		})
	}
	return script, nil
}

// hue spreads n half-transparent colours evenly around the colour wheel
func hue(i, n int) string {
	r, g, b := colorful.Hsv(360*float64(i)/float64(n), 0.85, 1).Clamped().RGB255()
	return fmt.Sprintf("rgba(%d,%d,%d,0.5)", r, g, b)
}

// sortRegions orders regions for reading (Western: top-to-bottom, left-to-right)
func (s *Suggester) sortRegions(regions []analyzer.Region) []analyzer.Region {
	sort.SliceStable(regions, func(i, j int) bool {
		// Threshold for "same row" (20 pixels)
		const threshold = 20

		yDiff := regions[i].Rect.Min.Y - regions[j].Rect.Min.Y
		if yDiff > threshold || yDiff < -threshold {
			return regions[i].Rect.Min.Y < regions[j].Rect.Min.Y
		}

		// Same row, sort by X
		return regions[i].Rect.Min.X < regions[j].Rect.Min.X
	})
	return regions
}

// radius covers the region's longer side with some margin
func (s *Suggester) radius(r analyzer.Region) float64 {
	radius := 0.6 * float64(max(r.Rect.Dx(), r.Rect.Dy()))
	radius = math.Max(radius, s.MinRadius)
	radius = math.Min(radius, s.MaxRadius)
	return math.Round(radius)
}
