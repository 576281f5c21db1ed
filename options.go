package compose

import (
	"log/slog"

	"github.com/gogpu/compose/fonts"
	"github.com/gogpu/compose/imagecache"
	"github.com/gogpu/compose/scheduler"
	"github.com/gogpu/compose/shapes"
)

// Notifier receives non-fatal, user-visible failures, such as a text layer
// that could not be drawn. Each failing layer is reported once per frame.
type Notifier interface {
	Notify(layerID string, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(layerID string, err error)

// Notify calls f.
func (f NotifierFunc) Notify(layerID string, err error) { f(layerID, err) }

// Option configures a Compositor or an Editor.
//
// Example:
//
//	comp := compose.New(
//	    compose.WithShapes(myShapes),
//	    compose.WithNotifier(compose.NotifierFunc(showToast)),
//	)
type Option func(*options)

type options struct {
	images   *imagecache.Cache
	fonts    *fonts.Registry
	shapes   *shapes.Registry
	notifier Notifier
	logger   *slog.Logger
	poolSize int

	frames  scheduler.FrameSource // Editor only
	cacheOp []imagecache.Option
	fontOp  []fonts.Option
}

func defaultOptions() options {
	return options{poolSize: 4}
}

// WithImageCache shares an existing image cache. The caller keeps
// ownership and must close it.
func WithImageCache(c *imagecache.Cache) Option {
	return func(o *options) {
		o.images = c
	}
}

// WithImageCacheOptions configures the image cache created when none is
// shared with WithImageCache.
func WithImageCacheOptions(opts ...imagecache.Option) Option {
	return func(o *options) {
		o.cacheOp = append(o.cacheOp, opts...)
	}
}

// WithFonts shares an existing font registry. The caller keeps ownership
// and must close it.
func WithFonts(r *fonts.Registry) Option {
	return func(o *options) {
		o.fonts = r
	}
}

// WithFontOptions configures the font registry created when none is
// shared with WithFonts.
func WithFontOptions(opts ...fonts.Option) Option {
	return func(o *options) {
		o.fontOp = append(o.fontOp, opts...)
	}
}

// WithShapes sets the shape registry. The default is shapes.Default().
func WithShapes(r *shapes.Registry) Option {
	return func(o *options) {
		o.shapes = r
	}
}

// WithNotifier sets the receiver of per-layer failures.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithLogger overrides the package logger for one compositor or editor.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithPoolSize sets how many idle scratch buffers of each size are kept
// between frames. Zero keeps every buffer. Buffers are kept for a bounded
// number of recently used sizes regardless of n.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.poolSize = n
		}
	}
}

// WithFrameSource sets the frame source an Editor schedules renders on.
// The default is a 60Hz ticker.
func WithFrameSource(src scheduler.FrameSource) Option {
	return func(o *options) {
		o.frames = src
	}
}
