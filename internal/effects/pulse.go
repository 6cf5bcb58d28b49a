package effects

import (
	"fmt"

	"github.com/ivlev/twinkle/internal/engine"
	"github.com/ivlev/twinkle/internal/interpolator"
)

// Pulse is a filled circle that beats three times before vanishing
func Pulse() Descriptor {
	return Descriptor{
		ID: "pulse",
		Defaults: Settings{
			Color:    defaultColor,
			Radius:   100,
			Duration: 3000,
			FPS:      DefaultFPS,
		},
		Build: buildPulse,
	}
}

func buildPulse(s Settings) (Scene, error) {
	const id = "pulse"
	if err := s.validate(id); err != nil {
		return Scene{}, err
	}
	ease, err := s.easing()
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", id, err)
	}

	r := s.Radius
	opacityIpl, err := interpolator.New([]float64{0, 1, 0.6, 1, 0.6, 1, 0})
	if err != nil {
		return Scene{}, err
	}
	radiusIpl, err := interpolator.New([]float64{0, r, r * 0.6, r, r * 0.6, r, 0})
	if err != nil {
		return Scene{}, err
	}

	frame := func(ev engine.FrameEvent) {
		frac := ease(ev.Frac)
		ev.Ctx.
			Clear().
			Opacity(opacityIpl.Get(frac)).
			Path().
			Circle(ev.Ctx.Width*0.5, ev.Ctx.Height*0.5, radiusIpl.Get(frac)).
			Fill(s.Color)
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
