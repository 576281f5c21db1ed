package fonts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-text/typesetting/font"
)

// Descriptor selects a face the way a CSS font shorthand does.
type Descriptor struct {
	Family string
	Weight int     // 100..900, 0 means 400
	Size   float64 // pixels
}

// String formats d as a CSS font shorthand, e.g. `700 48px "Inter"`.
func (d Descriptor) String() string {
	return fmt.Sprintf("%d %spx %q", d.weight(), strconv.FormatFloat(d.Size, 'f', -1, 64), d.Family)
}

func (d Descriptor) weight() int {
	if d.Weight <= 0 {
		return 400
	}
	return d.Weight
}

// ParseDescriptor parses the `weight size family` shorthand produced by
// String. The weight may be numeric or a keyword; the family may be quoted.
func ParseDescriptor(s string) (Descriptor, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Descriptor{}, fmt.Errorf("fonts: malformed descriptor %q", s)
	}
	weight, err := ParseWeight(fields[0])
	if err != nil {
		return Descriptor{}, err
	}
	size, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "px"), 64)
	if err != nil || size <= 0 {
		return Descriptor{}, fmt.Errorf("fonts: bad size in %q", s)
	}
	family := strings.Trim(strings.Join(fields[2:], " "), `"'`)
	return Descriptor{Family: family, Weight: weight, Size: size}, nil
}

// ParseWeight maps a CSS weight keyword or number to the 100..900 scale.
func ParseWeight(s string) (int, error) {
	switch strings.ToLower(s) {
	case "", "normal", "regular":
		return 400, nil
	case "bold":
		return 700, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 1000 {
		return 0, fmt.Errorf("fonts: bad weight %q", s)
	}
	return n, nil
}

// normalize folds a family name for lookups.
func normalize(family string) string {
	return font.NormalizeFamily(strings.Trim(family, `"' `))
}
