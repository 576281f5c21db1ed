package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gogpu/compose/imagecache"
	"github.com/gogpu/compose/input"
	"github.com/gogpu/compose/scheduler"
	"github.com/gogpu/compose/state"
)

// Editor renders a state.Store onto a Target whenever the store changes,
// images or fonts finish loading, or the stroke being drawn moves.
//
// Renders are coalesced by a scheduler: any number of changes between two
// frames cost one render. Pointer input goes through Input, which commits
// finished strokes back to the store.
//
//	ed, err := compose.NewEditor(store, preview)
//	if err != nil {
//		return err
//	}
//	defer ed.Close()
//
//	ed.Input().Press(input.Point{X: ev.X, Y: ev.Y})
type Editor struct {
	store  *state.Store
	target Target
	comp   *Compositor
	sched  *scheduler.Scheduler
	input  *input.Translator

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	unsub  func()

	mu     sync.Mutex
	closed bool
	loaded map[string]bool // font descriptors already requested
}

// NewEditor creates an editor drawing store onto target. Rendering starts
// on the first frame of the frame source.
func NewEditor(store *state.Store, target Target, opts ...Option) (*Editor, error) {
	if store == nil {
		return nil, errors.New("compose: nil store")
	}
	if target == nil {
		return nil, errors.New("compose: nil target")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Editor{
		store:  store,
		target: target,
		ctx:    ctx,
		cancel: cancel,
		loaded: make(map[string]bool),
	}

	// A finished image load redraws the frame that was waiting for it.
	o.cacheOp = append(o.cacheOp, imagecache.WithNotify(func(string, error) {
		e.Request()
	}))
	e.comp = newCompositor(o)

	frames := o.frames
	if frames == nil {
		frames = scheduler.NewTickerFrames(0)
	}
	e.input = input.New(store, e.Request)
	e.sched = scheduler.New(e.draw, frames, scheduler.WithLogger(e.comp.logger))

	e.unsub = store.Subscribe(func(v uint64) {
		e.syncBrush()
		e.sched.Invalidate(v)
	})
	e.syncBrush()
	e.sched.Invalidate(store.Version())
	return e, nil
}

// Store returns the edited store.
func (e *Editor) Store() *state.Store { return e.store }

// Input returns the pointer translator feeding strokes into the store.
func (e *Editor) Input() *input.Translator { return e.input }

// Compositor returns the compositor used for rendering.
func (e *Editor) Compositor() *Compositor { return e.comp }

// Request schedules a render on the next frame.
func (e *Editor) Request() {
	if s := e.sched; s != nil {
		s.Request()
	}
}

// Flush renders now if a render is pending.
func (e *Editor) Flush() error {
	if e.isClosed() {
		return ErrEditorClosed
	}
	return e.sched.Flush()
}

// Resize records where the surface is displayed, for pointer mapping, and
// redraws.
func (e *Editor) Resize(v input.Viewport) {
	e.input.SetViewport(v)
	e.Request()
}

// ClearDrawings removes every committed drawing and discards the stroke
// in progress.
func (e *Editor) ClearDrawings() {
	e.input.Reset()
	e.store.ClearDrawings()
}

// syncBrush copies the drawing tool settings into the translator.
func (e *Editor) syncBrush() {
	doc, _ := e.store.Snapshot()
	e.input.SetBrush(input.Brush{
		Enabled: doc.IsDrawingMode,
		Size:    doc.DrawingSize,
		Color:   doc.DrawingColor,
	})
}

// draw is the scheduler callback.
func (e *Editor) draw() error {
	doc, _ := e.store.Snapshot()
	e.loadFonts(&doc)

	err := e.comp.Render(e.target, Frame{Document: doc, InProgress: e.input.InProgress()})
	if dc := e.target.Context(); dc != nil {
		e.input.SetSurfaceSize(dc.Width(), dc.Height())
	}
	return err
}

// loadFonts starts a load for every text font not requested before. Each
// completed load triggers a redraw.
func (e *Editor) loadFonts(doc *state.Document) {
	for _, t := range doc.Texts {
		d := descriptor(t)
		key := d.String()

		e.mu.Lock()
		if e.closed || e.loaded[key] {
			e.mu.Unlock()
			continue
		}
		e.loaded[key] = true
		e.wg.Add(1)
		e.mu.Unlock()

		go func() {
			defer e.wg.Done()
			if err := e.comp.fonts.Load(e.ctx, d); err != nil {
				e.comp.logger.Debug("compose: font load failed", "font", key, "err", err)
			}
			e.Request()
		}()
	}
}

// Download renders the current document at full resolution and writes it
// to w as PNG. With final set the stroke in progress is left out, as for
// a saved result; otherwise the output matches the live preview.
func (e *Editor) Download(w io.Writer, final bool) error {
	return e.Export(e.ctx, w, final, ExportOptions{Format: PNG})
}

// Export is Download with a choice of format.
func (e *Editor) Export(ctx context.Context, w io.Writer, final bool, opts ExportOptions) error {
	if e.isClosed() {
		return ErrEditorClosed
	}
	doc, _ := e.store.Snapshot()
	if !final {
		opts.InProgress = e.input.InProgress()
	}

	// Encode to memory so a failed render never leaves a partial file.
	var buf bytes.Buffer
	if err := e.comp.Export(ctx, &buf, doc, opts); err != nil {
		return fmt.Errorf("compose: export: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (e *Editor) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close stops rendering, cancels pending frames and loads, and releases
// the images and fonts the editor owns. The target is not closed.
func (e *Editor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.unsub()
	e.sched.Close()
	e.cancel()
	e.input.Reset()
	e.wg.Wait()
	return e.comp.Close()
}
