package effects

import (
	"fmt"
	"math"

	"github.com/ivlev/twinkle/internal/engine"
	"github.com/ivlev/twinkle/internal/interpolator"
)

// Orbit spins a ring of satellites out from the centre and back
func Orbit() Descriptor {
	return Descriptor{
		ID: "orbit",
		Defaults: Settings{
			Color:            defaultColor,
			Radius:           100,
			Duration:         3000,
			Satellites:       10,
			SatellitesRadius: 10,
			Circulations:     1.5,
			FPS:              DefaultFPS,
		},
		Build: buildOrbit,
	}
}

func buildOrbit(s Settings) (Scene, error) {
	const id = "orbit"
	if err := s.validate(id); err != nil {
		return Scene{}, err
	}
	if s.Satellites < 1 {
		return Scene{}, fmt.Errorf("%s: satellites must be at least 1, got %d", id, s.Satellites)
	}
	if s.SatellitesRadius <= 0 || s.SatellitesRadius > s.Radius {
		return Scene{}, fmt.Errorf("%s: satellitesRadius must be in (0, %v], got %v", id, s.Radius, s.SatellitesRadius)
	}
	ease, err := s.easing()
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", id, err)
	}

	// Orbit radius keeps the satellites inside the overlay
	r := s.Radius - s.SatellitesRadius
	opacityIpl, err := interpolator.New([]float64{0.4, 1, 1, 0.4})
	if err != nil {
		return Scene{}, err
	}
	radiusIpl, err := interpolator.New([]float64{0, r, r, 0})
	if err != nil {
		return Scene{}, err
	}
	step := 2 * math.Pi / float64(s.Satellites)

	frame := func(ev engine.FrameEvent) {
		frac := ease(ev.Frac)
		radius := radiusIpl.Get(frac)
		angle := 2 * math.Pi * s.Circulations * frac

		path := ev.Ctx.
			Clear().
			Opacity(opacityIpl.Get(frac)).
			Translate(ev.Ctx.Width*0.5, ev.Ctx.Height*0.5).
			Path()
		for i := 0; i < s.Satellites; i++ {
			angle += step
			path.Circle(math.Cos(angle)*radius, math.Sin(angle)*radius, s.SatellitesRadius)
		}
		path.Fill(s.Color)
	}

	size := s.Size()
	return Scene{
		Width:    size,
		Height:   size,
		Duration: s.DurationValue(),
		FPS:      s.FPS,
		Frame:    frame,
	}, nil
}
