package interpolator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

// ErrUnknownEasing is returned by EasingByName for unsupported curve names.
var ErrUnknownEasing = errors.New("unknown easing")

// Easing reshapes linear progress in [0,1].
type Easing func(t float64) float64

var easings = map[string]Easing{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-out-sine":  ease.InOutSine,
	"out-back":     ease.OutBack,
	"out-elastic":  ease.OutElastic,
	"out-bounce":   ease.OutBounce,
}

// EasingByName looks up an easing curve. An empty name is linear.
func EasingByName(name string) (Easing, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ease.Linear, nil
	}
	e, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEasing, name)
	}
	return e, nil
}

// EasingNames lists the supported curve names in order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
