package compose

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/integration/ggcanvas"
	"github.com/gogpu/gpucontext"
)

// Target is a paintable surface the compositor draws into.
//
// *ggcanvas.Canvas satisfies Target, so an on-screen preview and an
// offscreen Surface are interchangeable.
type Target interface {
	// Context returns the drawing context, or nil once the target is
	// closed.
	Context() *gg.Context

	// Resize changes the pixel size. Resizing to the current size is a
	// no-op.
	Resize(width, height int) error

	// MarkDirty flags the content as changed after a render.
	MarkDirty()
}

// Surface is an offscreen Target backed by a CPU pixmap.
//
// Thread safety: the methods are safe for concurrent use, but the context
// returned by Context must only be used by one goroutine at a time.
type Surface struct {
	mu     sync.Mutex
	dc     *gg.Context
	dirty  bool
	closed bool
}

// NewSurface creates an offscreen surface of the given size.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	return &Surface{dc: gg.NewContext(width, height)}, nil
}

// Context returns the drawing context, or nil if the surface is closed.
func (s *Surface) Context() *gg.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.dc
}

// Resize changes the surface size. The content is discarded unless the
// size is unchanged.
func (s *Surface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSurfaceClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if width == s.dc.Width() && height == s.dc.Height() {
		return nil
	}
	if err := s.dc.Resize(width, height); err != nil {
		return fmt.Errorf("compose: resize surface: %w", err)
	}
	Logger().Info("compose: surface resized", "width", width, "height", height)
	return nil
}

// MarkDirty flags the surface as changed.
func (s *Surface) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// TakeDirty reports whether the surface changed since the last call and
// clears the flag.
func (s *Surface) TakeDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dirty
	s.dirty = false
	return d
}

// Size returns the surface size in pixels.
func (s *Surface) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, 0
	}
	return s.dc.Width(), s.dc.Height()
}

// Image returns a copy of the current content.
func (s *Surface) Image() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSurfaceClosed
	}
	return s.dc.ResizeTarget().ToImage(), nil
}

// Pixmap returns the live pixel buffer. It is only valid until the next
// Resize or Close.
func (s *Surface) Pixmap() *gg.Pixmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.dc.ResizeTarget()
}

// SavePNG writes the current content to a PNG file.
func (s *Surface) SavePNG(path string) error {
	pm := s.Pixmap()
	if pm == nil {
		return ErrSurfaceClosed
	}
	return pm.SavePNG(path)
}

// Close releases the surface. Later calls to Context return nil.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.dc.Close()
}

// NewPreview creates an on-screen Target sharing the GPU device of
// provider. The returned canvas is presented by the host application.
func NewPreview(provider gpucontext.DeviceProvider, width, height int) (*ggcanvas.Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	c, err := ggcanvas.New(provider, width, height)
	if err != nil {
		return nil, fmt.Errorf("compose: create preview: %w", err)
	}
	return c, nil
}

var (
	_ Target = (*Surface)(nil)
	_ Target = (*ggcanvas.Canvas)(nil)
)
