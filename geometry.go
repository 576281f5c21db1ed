package compose

import (
	"math"

	"github.com/gogpu/gg"
)

// RoundRectPath returns a closed rectangle path with corner radius r.
// Negative sizes are normalised, r is clamped to [0, min(w, h)/2], and a
// zero radius yields a plain rectangle.
func RoundRectPath(x, y, w, h, r float64) *gg.Path {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))

	p := gg.NewPath()
	if r == 0 {
		p.Rectangle(x, y, w, h)
		return p
	}
	p.RoundedRectangle(x, y, w, h, r)
	return p
}

// percent returns pct percent of total.
func percent(total int, pct float64) float64 {
	return float64(total) * pct / 100
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// fitScale is the factor that fits an iw x ih image inside a w x h surface
// while keeping its aspect ratio.
func fitScale(w, h, iw, ih int) float64 {
	if iw <= 0 || ih <= 0 {
		return 0
	}
	return math.Min(float64(w)/float64(iw), float64(h)/float64(ih))
}

// finite reports whether every value is a usable finite number.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
