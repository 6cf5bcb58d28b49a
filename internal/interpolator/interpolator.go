package interpolator

import (
	"errors"
	"fmt"
)

// ErrTooFewKeyframes is returned when an Interpolator is built from less than two values.
var ErrTooFewKeyframes = errors.New("interpolator needs at least 2 keyframes")

// point is a keyframe sample on the [0,1] progress axis
type point struct {
	X float64
	Y float64
}

// Interpolator evaluates a piecewise-linear curve through equally spaced keyframes
type Interpolator struct {
	points []point
}

// New creates an Interpolator whose keyframes sit at positions i/(n-1)
func New(values []float64) (*Interpolator, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewKeyframes, len(values))
	}

	dist := 1.0 / float64(len(values)-1)
	points := make([]point, len(values))
	for i, v := range values {
		points[i] = point{X: dist * float64(i), Y: v}
	}
	// Guard against float drift on the last position
	points[len(points)-1].X = 1.0

	return &Interpolator{points: points}, nil
}

// MustNew is like New but panics on invalid input. Used for built-in curves.
func MustNew(values ...float64) *Interpolator {
	ipl, err := New(values)
	if err != nil {
		panic(err)
	}
	return ipl
}

// Len returns the number of keyframes
func (ipl *Interpolator) Len() int {
	return len(ipl.points)
}

// Get returns the interpolated value at x, clamped to [0,1]
func (ipl *Interpolator) Get(x float64) float64 {
	x = clamp(x, 0, 1)

	for i := 1; i < len(ipl.points); i++ {
		prev := ipl.points[i-1]
		current := ipl.points[i]
		if prev.X <= x && x <= current.X {
			return interpolate(prev, current, x)
		}
	}

	// Unreachable for clamped x, the last segment always ends at 1
	return ipl.points[len(ipl.points)-1].Y
}

// interpolate returns the value on the line through p1 and p2 at x
func interpolate(p1, p2 point, x float64) float64 {
	if x == p1.X {
		return p1.Y
	}
	if x == p2.X {
		return p2.Y
	}
	m := (p2.Y - p1.Y) / (p2.X - p1.X)
	return p1.Y + m*(x-p1.X)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
