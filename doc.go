// Package compose renders layered editor documents into a single raster.
//
// # Overview
//
// A document (see package state) describes a base layer, extra background
// images, freehand drawings, shapes, text in two placements and a
// foreground subject with optional cutout and clones. A Compositor draws
// one snapshot of that document onto a Target in a fixed order:
//
//  1. surface sizing
//  2. base layer (checkerboard, solid colour or background image)
//  3. background image layers
//  4. drawing strokes, then the stroke in progress
//  5. shapes
//  6. background-placed text
//  7. foreground subject with its cutout
//  8. foreground clones
//  9. foreground-placed text
//
// Within a step layers stack in array order.
//
// # Quick Start
//
//	comp := compose.New()
//	defer comp.Close()
//
//	surf, _ := compose.NewSurface(1, 1)
//	doc := state.NewDocument()
//	doc.BackgroundDimensions = state.Dimensions{Width: 800, Height: 600}
//	doc.HasChangedBackground = true
//
//	if err := comp.Render(surf, compose.Frame{Document: doc}); err != nil {
//		// compose.ErrNotReady: an image is still loading.
//	}
//	_ = surf.SavePNG("out.png")
//
// # Editors
//
// An Editor wires a state.Store, the image cache, the font registry, the
// input translator and a coalescing scheduler around one Target, so that
// every store mutation and every pointer move results in at most one
// render per frame.
//
// # Coordinate System
//
// Layer positions are percentages of the surface size. Drawing points are
// surface pixels with the origin at the top-left corner. Rotations are in
// degrees, clockwise.
package compose
