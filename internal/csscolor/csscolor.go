// Package csscolor parses the CSS colour strings stored in layer records.
package csscolor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// ErrInvalid is returned for strings that are not CSS colours.
var ErrInvalid = errors.New("invalid color")

// Parse accepts hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb()/rgba(),
// "transparent" and the CSS named colours. The result has straight alpha.
func Parse(s string) (gg.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return gg.RGBA{}, fmt.Errorf("%w: empty", ErrInvalid)
	case v == "transparent":
		return gg.Transparent, nil
	case v[0] == '#':
		c, err := gg.ParseHex(v)
		if err != nil {
			return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		return c, nil
	case strings.HasPrefix(v, "rgb"):
		return parseFunc(v, s)
	}
	if c, ok := colornames.Map[v]; ok {
		return gg.FromColor(c), nil
	}
	return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, s)
}

// MustParse is Parse that falls back to opaque black.
func MustParse(s string) gg.RGBA {
	c, err := Parse(s)
	if err != nil {
		return gg.Black
	}
	return c
}

// parseFunc handles rgb(r, g, b) and rgba(r, g, b, a), with either comma
// or space separators and optional percentages.
func parseFunc(v, orig string) (gg.RGBA, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
	}
	body := strings.NewReplacer(",", " ", "/", " ").Replace(v[open+1 : len(v)-1])
	parts := strings.Fields(body)
	if len(parts) != 3 && len(parts) != 4 {
		return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
	}

	var ch [4]float64
	ch[3] = 1
	for i, p := range parts {
		pct := strings.HasSuffix(p, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
		if err != nil {
			return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
		}
		switch {
		case pct:
			f /= 100
		case i < 3:
			f /= 255
		}
		ch[i] = min(max(f, 0), 1)
	}
	return gg.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
