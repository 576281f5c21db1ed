package compose

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"sync/atomic"
	"testing"

	"github.com/gogpu/compose/imagecache"
	"github.com/gogpu/compose/input"
	"github.com/gogpu/compose/scheduler"
	"github.com/gogpu/compose/state"
)

// countingSurface counts completed renders.
type countingSurface struct {
	*Surface
	renders atomic.Int32
}

func (c *countingSurface) MarkDirty() {
	c.renders.Add(1)
	c.Surface.MarkDirty()
}

func newTestEditor(t *testing.T, doc state.Document) (*Editor, *countingSurface, *scheduler.ManualFrames) {
	t.Helper()
	target := &countingSurface{Surface: newTestSurface(t, 1, 1)}
	frames := scheduler.NewManualFrames()
	ed, err := NewEditor(state.NewStore(doc), target,
		WithFrameSource(frames),
		WithImageCacheOptions(imagecache.WithLoader(newMemImages())),
	)
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	t.Cleanup(func() { _ = ed.Close() })
	return ed, target, frames
}

// TestEditorCoalesces verifies that many changes between two frames cost
// one render and that an idle frame renders nothing.
func TestEditorCoalesces(t *testing.T) {
	ed, target, frames := newTestEditor(t, changed(40, 30, "#ffffff"))

	frames.Tick()
	if got := target.renders.Load(); got != 1 {
		t.Fatalf("initial renders = %d, want 1", got)
	}

	for i := range 10 {
		ed.Store().Update(func(d *state.Document) {
			d.BackgroundOpacity = float64(i) / 10
		})
	}
	frames.Tick()
	if got := target.renders.Load(); got != 2 {
		t.Errorf("renders after 10 updates = %d, want 2", got)
	}

	frames.Tick()
	frames.Tick()
	if got := target.renders.Load(); got != 2 {
		t.Errorf("renders after idle frames = %d, want 2", got)
	}
}

// TestEditorDrawing drives a stroke through the input translator and
// checks that the preview shows it live and the store gets it on release.
func TestEditorDrawing(t *testing.T) {
	doc := changed(100, 100, "#ffffff")
	doc.IsDrawingMode = true
	doc.DrawingColor = "#ff0000"
	doc.DrawingSize = 6
	ed, target, _ := newTestEditor(t, doc)

	if err := ed.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	ed.Resize(input.Viewport{Width: 100, Height: 100})

	in := ed.Input()
	in.Press(input.Point{X: 10, Y: 50})
	in.Move(input.Point{X: 90, Y: 50})
	if err := ed.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	expectColor(t, target.Pixmap(), red, image.Pt(50, 50))

	in.Release()
	got, _ := ed.Store().Snapshot()
	if len(got.Drawings) != 1 || len(got.Drawings[0].Points) != 2 {
		t.Fatalf("drawings = %+v, want one path of two points", got.Drawings)
	}
	if p := got.Drawings[0].Points[0]; p.Color != "#ff0000" || p.Size != 6 {
		t.Errorf("first point = %+v", p)
	}

	ed.ClearDrawings()
	if err := ed.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	expectColor(t, target.Pixmap(), white, image.Pt(50, 50))
}

// TestEditorDownload checks that a final download leaves out the stroke
// in progress and a preview download keeps it.
func TestEditorDownload(t *testing.T) {
	doc := changed(60, 40, "#ffffff")
	doc.IsDrawingMode = true
	doc.DrawingColor = "#0000ff"
	doc.DrawingSize = 8
	ed, _, _ := newTestEditor(t, doc)
	ed.Resize(input.Viewport{Width: 60, Height: 40})
	if err := ed.Flush(); err != nil {
		t.Fatal(err)
	}

	ed.Input().Press(input.Point{X: 0, Y: 20})
	ed.Input().Move(input.Point{X: 60, Y: 20})

	decode := func(final bool) image.Image {
		t.Helper()
		var buf bytes.Buffer
		if err := ed.Download(&buf, final); err != nil {
			t.Fatalf("Download(final=%v): %v", final, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("png.Decode: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 40 {
			t.Fatalf("bounds = %v, want 60x40", b)
		}
		return img
	}

	if _, _, b, _ := decode(true).At(30, 20).RGBA(); b != 0xffff {
		t.Error("final download is not white at the stroke")
	}
	if r, _, b, _ := decode(false).At(30, 20).RGBA(); r > 0x1000 || b < 0xf000 {
		t.Error("preview download does not show the stroke in progress")
	}
}

func TestEditorClosed(t *testing.T) {
	ed, _, frames := newTestEditor(t, changed(10, 10, "#000"))
	if err := ed.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ed.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := ed.Flush(); !errors.Is(err, ErrEditorClosed) {
		t.Errorf("Flush after Close = %v", err)
	}
	if err := ed.Download(&bytes.Buffer{}, true); !errors.Is(err, ErrEditorClosed) {
		t.Errorf("Download after Close = %v", err)
	}
	if frames.Tick() {
		t.Error("frame source still started after Close")
	}
}

func TestNewEditorRejectsNil(t *testing.T) {
	s := newTestSurface(t, 1, 1)
	if _, err := NewEditor(nil, s); err == nil {
		t.Error("NewEditor accepted a nil store")
	}
	if _, err := NewEditor(state.NewStore(state.NewDocument()), nil); err == nil {
		t.Error("NewEditor accepted a nil target")
	}
}
