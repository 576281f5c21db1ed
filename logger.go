package compose

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gg"
)

// discard drops every record. Enabled reports false, so slog never builds
// the record in the first place.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

var (
	silent = slog.New(discard{})
	active atomic.Pointer[slog.Logger]
)

func init() {
	active.Store(silent)
}

// SetLogger routes compose's diagnostics, and those of the gg rasteriser
// underneath it, to l. Compositors and editors built without WithLogger
// pick it up when they are created. A nil l turns logging off again, which
// is also the initial state.
//
// Records are emitted at these levels:
//   - Debug: skipped frames and omitted layers
//   - Info: surface resizes and finished exports
//   - Warn: layers that failed to draw
//
// Typical setup in a host application:
//
//	compose.SetLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
	gg.SetLogger(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger { return active.Load() }
