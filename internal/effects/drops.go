package effects

import (
	"fmt"

	"github.com/ivlev/twinkle/internal/engine"
	"github.com/ivlev/twinkle/internal/interpolator"
)

// Drops plays several outlined drops started Delay milliseconds apart
func Drops() Descriptor {
	return Descriptor{
		ID: "drops",
		Defaults: Settings{
			Color:    defaultColor,
			Radius:   300,
			Duration: 1000,
			Width:    2,
			Count:    3,
			Delay:    100,
			FPS:      DefaultFPS,
		},
		Build: buildDrops,
	}
}

func buildDrops(s Settings) (Scene, error) {
	const id = "drops"
	if err := s.validate(id); err != nil {
		return Scene{}, err
	}
	if s.Width <= 0 {
		return Scene{}, fmt.Errorf("%s: width must be positive, got %v", id, s.Width)
	}
	if s.Count < 1 {
		return Scene{}, fmt.Errorf("%s: count must be at least 1, got %d", id, s.Count)
	}
	if s.Delay < 0 {
		return Scene{}, fmt.Errorf("%s: delay must not be negative, got %v", id, s.Delay)
	}
	scale, step := interpolator.Stagger(s.Count, s.Duration, s.Delay)
	if scale <= 0 {
		return Scene{}, fmt.Errorf("%s: %d drops %vms apart do not fit into %vms", id, s.Count, s.Delay, s.Duration)
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
		ev.Ctx.Clear()
		for i := 0; i < s.Count; i++ {
			frac, ok := interpolator.Scale(ev.Frac, scale, step*float64(i))
			if !ok {
				continue
			}
			frac = ease(frac)
			ev.Ctx.
				Opacity(opacityIpl.Get(frac)).
				Path().
				Circle(ev.Ctx.Width*0.5, ev.Ctx.Height*0.5, radiusIpl.Get(frac)).
				Stroke(s.Width, s.Color)
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
