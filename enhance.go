package compose

import (
	"github.com/gogpu/compose/internal/filter"
	"github.com/gogpu/compose/state"
)

// FilterString returns the CSS filter property equivalent to e, with unset
// fields at their defaults:
//
//	brightness(B%) contrast(C%) saturate(S%) opacity(100-fade%) blur(Npx) brightness(100-blacks%)
//
// Every stage is listed even when it is an identity. The compositor applies
// the same stages, in the same order, to pixels.
func FilterString(e state.ImageEnhancements) string {
	return filterChain(e.Resolve()).String()
}

// filterChain builds the ordered pixel pipeline for a. Exposure, highlights,
// shadows and sharpness have no stage.
func filterChain(a state.Adjustments) filter.Chain {
	return filter.Chain{
		{Kind: filter.Brightness, Amount: a.Brightness},
		{Kind: filter.Contrast, Amount: a.Contrast},
		{Kind: filter.Saturate, Amount: a.Saturation},
		{Kind: filter.Opacity, Amount: 100 - a.Fade},
		{Kind: filter.BlurPx, Amount: a.Blur},
		{Kind: filter.Brightness, Amount: 100 - a.Blacks},
	}
}

// enhancement returns the chain for e when apply is set, or nil.
func enhancement(e state.ImageEnhancements, apply bool) filter.Chain {
	if !apply {
		return nil
	}
	c := filterChain(e.Resolve())
	if c.Identity() {
		return nil
	}
	return c
}
