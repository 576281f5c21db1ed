// Package filter implements the raster effects used by the compositor:
//   - colour matrices (brightness, contrast, saturation, opacity)
//   - separable Gaussian blur
//   - glow (zero-offset shadow under the source)
//   - silhouettes (dilated alpha shape filled with a colour)
//
// A Chain strings colour and blur stages together in CSS filter order and
// renders itself as the equivalent CSS filter value.
//
// All functions work on premultiplied *gg.Pixmap data in place unless
// they return a new pixmap.
package filter
