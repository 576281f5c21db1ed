package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/gogpu/gg"

	"github.com/gogpu/compose/fonts"
	"github.com/gogpu/compose/imagecache"
	"github.com/gogpu/compose/internal/pool"
	"github.com/gogpu/compose/shapes"
	"github.com/gogpu/compose/state"
)

// Image cache keys of the two base images. Background image layers are
// keyed by layer id.
const (
	keyBackground = "image:background"
	keyForeground = "image:foreground"
)

// Frame is the input of one render: a document snapshot plus the stroke
// currently being drawn, which is not part of the document yet.
type Frame struct {
	Document   state.Document
	InProgress []state.DrawingPoint
}

// Compositor renders frames. It owns the scratch buffers used by layer
// effects and, unless they are shared through options, the image cache
// and the font registry.
//
// Thread safety: Render calls are serialised.
type Compositor struct {
	images   *imagecache.Cache
	fonts    *fonts.Registry
	shapes   *shapes.Registry
	notifier Notifier
	logger   *slog.Logger
	scratch  *pool.Pool

	ownImages bool
	ownFonts  bool

	mu     sync.Mutex
	closed bool
}

// New creates a compositor.
func New(opts ...Option) *Compositor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newCompositor(o)
}

func newCompositor(o options) *Compositor {
	c := &Compositor{
		images:   o.images,
		fonts:    o.fonts,
		shapes:   o.shapes,
		notifier: o.notifier,
		logger:   o.logger,
		scratch:  pool.New(o.poolSize, pool.DefaultMaxSizes),
	}
	if c.logger == nil {
		c.logger = Logger()
	}
	if c.images == nil {
		c.images = imagecache.New(append([]imagecache.Option{imagecache.WithLogger(c.logger)}, o.cacheOp...)...)
		c.ownImages = true
	}
	if c.fonts == nil {
		c.fonts = fonts.New(append([]fonts.Option{fonts.WithLogger(c.logger)}, o.fontOp...)...)
		c.ownFonts = true
	}
	if c.shapes == nil {
		c.shapes = shapes.Default()
	}
	return c
}

// Images returns the image cache used for layer images.
func (c *Compositor) Images() *imagecache.Cache { return c.images }

// Fonts returns the font registry used for text layers.
func (c *Compositor) Fonts() *fonts.Registry { return c.fonts }

// Render draws f onto t.
//
// Render returns ErrNotReady, leaving t untouched, when the base or
// foreground image is still loading; background image layers that are
// still loading are omitted instead. A nil or closed target is a no-op.
// Failures of individual text layers are logged and reported to the
// notifier without failing the frame.
func (c *Compositor) Render(t Target, f Frame) error {
	if t == nil || t.Context() == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}

	doc := &f.Document
	in, err := c.inputs(doc)
	if err != nil {
		return err
	}

	if w, h, ok := frameSize(doc, in.sizing); ok {
		if err := t.Resize(w, h); err != nil {
			if errors.Is(err, ErrSurfaceClosed) {
				return nil
			}
			return fmt.Errorf("compose: size surface: %w", err)
		}
	}
	dc := t.Context()
	if dc == nil {
		return nil
	}

	r := &renderer{
		c:       c,
		dc:      dc,
		pm:      dc.ResizeTarget(),
		doc:     doc,
		w:       dc.Width(),
		h:       dc.Height(),
		inputs:  in,
		pending: f.InProgress,
	}
	r.render()
	t.MarkDirty()
	return nil
}

// frameInputs are the decoded images one frame draws.
type frameInputs struct {
	background *imagecache.Image // nil when unset
	foreground *imagecache.Image // nil when unset
	sizing     *imagecache.Image // natural-size reference
	overlays   map[string]*imagecache.Image
}

// inputs resolves every image the frame references. Missing base images
// make the whole frame not ready; missing overlays are left out.
func (c *Compositor) inputs(doc *state.Document) (frameInputs, error) {
	in := frameInputs{overlays: make(map[string]*imagecache.Image, len(doc.BackgroundImages))}
	keys := make([]string, 0, 2+len(doc.BackgroundImages))

	need := func(key, url string) (*imagecache.Image, error) {
		if url == "" {
			return nil, nil
		}
		keys = append(keys, key)
		img, ok := c.images.Request(key, url)
		if ok {
			return img, nil
		}
		if err := c.images.Err(key); err != nil {
			return nil, fmt.Errorf("compose: %s: %w", key, err)
		}
		return nil, fmt.Errorf("%w: %s loading", ErrNotReady, key)
	}

	// Overlays start loading even when the base is not ready yet.
	for i, l := range doc.BackgroundImages {
		key := overlayKey(l, i)
		keys = append(keys, key)
		if img, ok := c.images.Request(key, l.URL); ok {
			in.overlays[key] = img
		}
	}

	var err error
	if !doc.HasTransparentBackground {
		if in.background, err = need(keyBackground, doc.Image.Background); err != nil {
			return in, err
		}
	}
	if in.foreground, err = need(keyForeground, doc.Image.Foreground); err != nil {
		return in, err
	}
	in.sizing = in.background
	if doc.HasTransparentBackground {
		in.sizing = in.foreground
	}

	c.images.Retain(keys)
	return in, nil
}

func overlayKey(l state.BackgroundImageLayer, index int) string {
	if l.ID != "" {
		return "layer:" + l.ID
	}
	return "layer#" + strconv.Itoa(index)
}

// frameSize picks the surface size: explicit dimensions on a changed
// background, else the natural size of the sizing image. ok is false when
// the surface should keep its current size.
func frameSize(doc *state.Document, sizing *imagecache.Image) (w, h int, ok bool) {
	if doc.HasChangedBackground && doc.BackgroundDimensions.Valid() {
		return doc.BackgroundDimensions.Width, doc.BackgroundDimensions.Height, true
	}
	if sizing != nil && sizing.Width() > 0 && sizing.Height() > 0 {
		return sizing.Width(), sizing.Height(), true
	}
	return 0, 0, false
}

// Prepare loads everything doc references and waits for it: the base
// images, every background image layer and the fonts of every text layer.
// Only a failing base image is an error; other failures are logged and the
// affected layer falls back or is omitted at render time.
func (c *Compositor) Prepare(ctx context.Context, doc *state.Document) error {
	if !doc.HasTransparentBackground && doc.Image.Background != "" {
		if _, err := c.images.Load(ctx, keyBackground, doc.Image.Background); err != nil {
			return fmt.Errorf("compose: background image: %w", err)
		}
	}
	if doc.Image.Foreground != "" {
		if _, err := c.images.Load(ctx, keyForeground, doc.Image.Foreground); err != nil {
			return fmt.Errorf("compose: foreground image: %w", err)
		}
	}
	for i, l := range doc.BackgroundImages {
		if l.URL == "" {
			continue
		}
		if _, err := c.images.Load(ctx, overlayKey(l, i), l.URL); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("compose: background image layer unavailable", "id", l.ID, "err", err)
		}
	}
	for _, t := range doc.Texts {
		if err := c.fonts.Load(ctx, descriptor(t)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Debug("compose: font unavailable, using fallback", "font", descriptor(t).String(), "err", err)
		}
	}
	return nil
}

// Size returns the size a render of doc would give the surface, when doc
// determines one. Images must already be loaded.
func (c *Compositor) Size(doc *state.Document) (width, height int, ok bool) {
	in, err := c.inputs(doc)
	if err != nil {
		return 0, 0, false
	}
	return frameSize(doc, in.sizing)
}

// Close releases scratch buffers and the owned cache and registry.
func (c *Compositor) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.scratch.Drain()
	var errs []error
	if c.ownImages {
		errs = append(errs, c.images.Close())
	}
	if c.ownFonts {
		errs = append(errs, c.fonts.Close())
	}
	return errors.Join(errs...)
}

// descriptor is the font a text layer asks for.
func descriptor(t state.TextLayer) fonts.Descriptor {
	return fonts.Descriptor{Family: t.FontFamily, Weight: t.FontWeight.Numeric(), Size: t.FontSize}
}

// renderer carries the state of one Render call.
type renderer struct {
	c       *Compositor
	dc      *gg.Context
	pm      *gg.Pixmap
	doc     *state.Document
	w, h    int
	inputs  frameInputs
	pending []state.DrawingPoint
}

// render runs every step in z-order.
func (r *renderer) render() {
	r.dc.Identity()
	r.dc.ResetClip()
	r.dc.ClearMask()
	r.dc.ClearPath()
	r.dc.Clear()

	r.base()
	r.overlays()
	r.strokes()
	r.shapeLayers()
	r.textLayers(state.PlacementBackground)
	r.foreground()
	r.clones()
	r.textLayers(state.PlacementForeground)
}

// scoped runs fn with the transform, clip and mask saved, restoring them
// on every exit path. A panic in fn is returned as an error.
func (r *renderer) scoped(fn func() error) (err error) {
	r.dc.Push()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("compose: panic: %v", p)
		}
		r.dc.ClearPath()
		r.dc.Pop()
	}()
	return fn()
}

// layer runs one layer draw in its own scope and logs a failure.
func (r *renderer) layer(kind, id string, fn func() error) error {
	err := r.scoped(fn)
	if err != nil {
		r.c.logger.Warn("compose: layer failed", "kind", kind, "id", id, "err", err)
	}
	return err
}

// withScratch hands fn a cleared w x h buffer from the pool.
func (r *renderer) withScratch(w, h int, fn func(*gg.Context) error) error {
	dc, err := r.c.scratch.Get(w, h)
	if err != nil {
		return err
	}
	defer r.c.scratch.Put(dc)
	return fn(dc)
}
