package compose

import (
	"github.com/gogpu/gg"

	"github.com/gogpu/compose/internal/csscolor"
)

// ParseColor parses a CSS colour: hex (#rgb, #rgba, #rrggbb, #rrggbbaa),
// rgb()/rgba(), "transparent" or a named colour. Errors wrap
// ErrInvalidColor.
func ParseColor(s string) (gg.RGBA, error) {
	return csscolor.Parse(s)
}

// paint resolves a layer colour. Like a canvas fillStyle, an unparsable
// value leaves the default (opaque black) in place.
func paint(s string, alpha float64) gg.RGBA {
	c := csscolor.MustParse(s)
	c.A *= clamp01(alpha)
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
