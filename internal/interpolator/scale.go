package interpolator

// Scale remaps a global fraction into the local clock of a staggered
// sub-animation. A zero scale means 1.
//
// The second result is false when (x-offset)/scale falls outside [0,1]:
// the sub-animation has not started yet or is already over.
func Scale(x, scale, offset float64) (float64, bool) {
	if scale == 0 {
		scale = 1
	}
	x = (x - offset) / scale
	if x >= 0 && x <= 1 {
		return x, true
	}
	return 0, false
}

// Stagger returns the shared scale and the per-element offset step for count
// sub-animations started delay apart inside one run of the given duration.
// Element i uses offset i*step.
func Stagger(count int, duration, delay float64) (scale, step float64) {
	if duration <= 0 {
		return 1, 0
	}
	if count < 1 {
		count = 1
	}
	scale = (duration - float64(count-1)*delay) / duration
	step = delay / duration
	return scale, step
}
