package filter

import (
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// Kind identifies a filter function.
type Kind uint8

// Filter functions, named after their CSS counterparts.
const (
	Brightness Kind = iota
	Contrast
	Saturate
	Opacity
	BlurPx
)

// String returns the CSS function name.
func (k Kind) String() string {
	switch k {
	case Brightness:
		return "brightness"
	case Contrast:
		return "contrast"
	case Saturate:
		return "saturate"
	case Opacity:
		return "opacity"
	case BlurPx:
		return "blur"
	default:
		return "unknown"
	}
}

// Op is one filter function. Amount is a percentage for the colour
// functions and a pixel radius for BlurPx.
type Op struct {
	Kind   Kind
	Amount float64
}

// String formats the op as a CSS filter function, e.g. "contrast(120%)".
func (o Op) String() string {
	unit := "%"
	if o.Kind == BlurPx {
		unit = "px"
	}
	return o.Kind.String() + "(" + strconv.FormatFloat(o.Amount, 'f', -1, 64) + unit + ")"
}

// Identity reports whether the op leaves pixels unchanged.
func (o Op) Identity() bool {
	if o.Kind == BlurPx {
		return o.Amount <= 0
	}
	return o.Amount == 100
}

// matrix returns the colour matrix of a colour function.
func (o Op) matrix() Matrix {
	f := float32(o.Amount / 100)
	if f < 0 {
		f = 0
	}
	switch o.Kind {
	case Brightness:
		return BrightnessMatrix(f)
	case Contrast:
		return ContrastMatrix(f)
	case Saturate:
		return SaturateMatrix(f)
	case Opacity:
		if f > 1 {
			f = 1
		}
		return OpacityMatrix(f)
	default:
		return IdentityMatrix()
	}
}

// Chain is an ordered list of filter functions applied left to right.
type Chain []Op

// String renders the chain as a CSS filter property value. Identity
// functions are kept so the string always lists every stage.
func (c Chain) String() string {
	if len(c) == 0 {
		return "none"
	}
	parts := make([]string, len(c))
	for i, op := range c {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// Identity reports whether applying the chain is a no-op.
func (c Chain) Identity() bool {
	for _, op := range c {
		if !op.Identity() {
			return false
		}
	}
	return true
}

// Apply runs the chain over pm in place. Each stage is clamped to the
// valid range before the next one reads it.
func (c Chain) Apply(pm *gg.Pixmap) {
	if pm == nil {
		return
	}
	for _, op := range c {
		if op.Identity() {
			continue
		}
		if op.Kind == BlurPx {
			Blur(pm, op.Amount)
			continue
		}
		op.matrix().Apply(pm)
	}
}
