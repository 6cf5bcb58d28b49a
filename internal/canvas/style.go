package canvas

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// ParseStyle converts a CSS colour string into a colour: hex forms,
// rgb()/rgba() with numbers or percentages, hsl()/hsla(), hwb(), named
// colours and "transparent". Channels outside their range are clamped.
func ParseStyle(style string) (color.NRGBA, error) {
	s := strings.ToLower(strings.TrimSpace(style))
	switch s {
	case "":
		return color.NRGBA{}, fmt.Errorf("empty style")
	case "transparent":
		return color.NRGBA{}, nil
	}

	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad colour %q: %w", style, err)
	}
	return color.NRGBA{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: channel(c.A),
	}, nil
}

// channel maps a [0,1] component to a byte
func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
