// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package input turns pointer and touch events into freehand strokes.
//
// A Translator maps client coordinates (the displayed, possibly scaled
// surface) to surface pixels, accumulates the stroke in progress and hands
// it to a Committer when the pointer is released or leaves the surface.
package input

import (
	"sync"

	"github.com/gogpu/compose/state"
)

// Phase is the translator state.
type Phase uint8

const (
	// Idle means no stroke is in progress.
	Idle Phase = iota
	// Drawing means a stroke is being accumulated.
	Drawing
)

// String returns the phase name.
func (p Phase) String() string {
	if p == Drawing {
		return "drawing"
	}
	return "idle"
}

// Viewport is the rectangle the surface occupies in client coordinates.
type Viewport struct {
	Left, Top     float64
	Width, Height float64
}

// Point is a position in client coordinates.
type Point struct {
	X, Y float64
}

// Brush is the tool applied to new points.
type Brush struct {
	Enabled bool // drawing mode
	Size    float64
	Color   string
}

// Committer receives finished strokes. state.Store implements it.
type Committer interface {
	AddDrawingPath(points []state.DrawingPoint) string
}

// Translator is the pointer state machine.
//
// Thread safety: all methods are safe for concurrent use. The change
// callback runs without the translator lock held.
type Translator struct {
	commit   Committer
	onChange func()

	mu       sync.Mutex
	phase    Phase
	path     []state.DrawingPoint
	viewport Viewport
	width    float64 // surface pixels
	height   float64
	brush    Brush
}

// New returns an idle translator committing to c. onChange, if not nil,
// is called whenever the in-progress stroke changes and a live render is
// needed.
func New(c Committer, onChange func()) *Translator {
	return &Translator{commit: c, onChange: onChange}
}

// SetViewport records where the surface is displayed.
func (t *Translator) SetViewport(v Viewport) {
	t.mu.Lock()
	t.viewport = v
	t.mu.Unlock()
}

// SetSurfaceSize records the surface size in pixels.
func (t *Translator) SetSurfaceSize(width, height int) {
	t.mu.Lock()
	t.width, t.height = float64(width), float64(height)
	t.mu.Unlock()
}

// SetBrush updates drawing mode and the tool applied to new points.
// Disabling drawing mode does not cancel a stroke already in progress.
func (t *Translator) SetBrush(b Brush) {
	t.mu.Lock()
	t.brush = b
	t.mu.Unlock()
}

// Phase returns the current state.
func (t *Translator) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// InProgress returns a copy of the stroke being drawn.
func (t *Translator) InProgress() []state.DrawingPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.path) == 0 {
		return nil
	}
	return append([]state.DrawingPoint(nil), t.path...)
}

// scale returns the client-to-surface factors. Callers must hold t.mu.
func (t *Translator) scale() (sx, sy float64) {
	sx, sy = 1, 1
	if t.viewport.Width > 0 && t.width > 0 {
		sx = t.width / t.viewport.Width
	}
	if t.viewport.Height > 0 && t.height > 0 {
		sy = t.height / t.viewport.Height
	}
	return sx, sy
}

// Point converts a client position to surface pixels.
func (t *Translator) Point(client Point) (x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.toSurface(client)
}

func (t *Translator) toSurface(client Point) (x, y float64) {
	sx, sy := t.scale()
	return (client.X - t.viewport.Left) * sx, (client.Y - t.viewport.Top) * sy
}

// Client converts surface pixels back to a client position.
func (t *Translator) Client(x, y float64) Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	sx, sy := t.scale()
	return Point{X: x/sx + t.viewport.Left, Y: y/sy + t.viewport.Top}
}

func (t *Translator) sample(client Point) state.DrawingPoint {
	x, y := t.toSurface(client)
	return state.DrawingPoint{X: x, Y: y, Size: t.brush.Size, Color: t.brush.Color}
}

// Press starts a stroke at client when drawing mode is on. It reports
// whether a stroke was started.
func (t *Translator) Press(client Point) bool {
	t.mu.Lock()
	if !t.brush.Enabled {
		t.mu.Unlock()
		return false
	}
	t.phase = Drawing
	t.path = []state.DrawingPoint{t.sample(client)}
	t.mu.Unlock()

	t.changed()
	return true
}

// Move extends the stroke in progress. Moves while idle are ignored.
func (t *Translator) Move(client Point) {
	t.mu.Lock()
	if t.phase != Drawing {
		t.mu.Unlock()
		return
	}
	t.path = append(t.path, t.sample(client))
	t.mu.Unlock()

	t.changed()
}

// Release ends the stroke and commits it if it has any points.
func (t *Translator) Release() {
	t.finish()
}

// Leave is Release for a pointer leaving the surface.
func (t *Translator) Leave() {
	t.finish()
}

// TouchStart is Press for the first touch point.
func (t *Translator) TouchStart(touches []Point) bool {
	if len(touches) == 0 {
		return false
	}
	return t.Press(touches[0])
}

// TouchMove is Move for the first touch point.
func (t *Translator) TouchMove(touches []Point) {
	if len(touches) == 0 {
		return
	}
	t.Move(touches[0])
}

// TouchEnd is Release for a touch sequence.
func (t *Translator) TouchEnd() {
	t.finish()
}

func (t *Translator) finish() {
	t.mu.Lock()
	if t.phase != Drawing {
		t.mu.Unlock()
		return
	}
	path := t.path
	t.path = nil
	t.phase = Idle
	t.mu.Unlock()

	if len(path) > 0 && t.commit != nil {
		t.commit.AddDrawingPath(path)
	}
	t.changed()
}

// Reset discards the stroke in progress without committing it.
func (t *Translator) Reset() {
	t.mu.Lock()
	had := len(t.path) > 0
	t.path = nil
	t.phase = Idle
	t.mu.Unlock()

	if had {
		t.changed()
	}
}

func (t *Translator) changed() {
	if t.onChange != nil {
		t.onChange()
	}
}
