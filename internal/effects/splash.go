package effects

import (
	"fmt"

	"github.com/ivlev/twinkle/internal/engine"
	"github.com/ivlev/twinkle/internal/interpolator"
)

const defaultColor = "rgba(255,0,0,0.5)"

// Splash is a filled circle growing to its radius while it fades in and out
func Splash() Descriptor {
	return Descriptor{
		ID: "splash",
		Defaults: Settings{
			Color:    defaultColor,
			Radius:   300,
			Duration: 1000,
			FPS:      DefaultFPS,
		},
		Build: func(s Settings) (Scene, error) {
			return buildRipple("splash", s, false)
		},
	}
}

// Drop is the outlined variant of Splash
func Drop() Descriptor {
	return Descriptor{
		ID: "drop",
		Defaults: Settings{
			Color:    defaultColor,
			Radius:   300,
			Duration: 1000,
			Width:    2,
			FPS:      DefaultFPS,
		},
		Build: func(s Settings) (Scene, error) {
			return buildRipple("drop", s, true)
		},
	}
}

func buildRipple(id string, s Settings, outline bool) (Scene, error) {
	if err := s.validate(id); err != nil {
		return Scene{}, err
	}
	if outline && s.Width <= 0 {
		return Scene{}, fmt.Errorf("%s: width must be positive, got %v", id, s.Width)
	}
	ease, err := s.easing()
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", id, err)
	}

	opacityIpl, err := interpolator.New([]float64{0.4, 1, 0})
	if err != nil {
		return Scene{}, err
	}
	radiusIpl, err := interpolator.New([]float64{0, s.Radius})
	if err != nil {
		return Scene{}, err
	}

	frame := func(ev engine.FrameEvent) {
		frac := ease(ev.Frac)
		radius := radiusIpl.Get(frac)
		opacity := opacityIpl.Get(frac)

		path := ev.Ctx.
			Clear().
			Opacity(opacity).
			Path().
			Circle(ev.Ctx.Width*0.5, ev.Ctx.Height*0.5, radius)
		if outline {
			path.Stroke(s.Width, s.Color)
		} else {
			path.Fill(s.Color)
		}
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
