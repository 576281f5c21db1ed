package fonts

import (
	"fmt"
	"io"
	"log/slog"
)

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	dirs      []string
	system    bool
	cacheDir  string
	faceCache int
	fallback  string
}

func defaultOptions() options {
	return options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		faceCache: 64,
		fallback:  "Go",
	}
}

// WithLogger sets the logger for font diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFontDirs adds directories searched for font files whose name
// matches a requested family.
func WithFontDirs(dirs ...string) Option {
	return func(o *options) {
		o.dirs = append(o.dirs, dirs...)
	}
}

// WithSystemFonts enables lookup of installed system fonts. The font index
// is kept in cacheDir; empty selects the platform cache directory.
func WithSystemFonts(cacheDir string) Option {
	return func(o *options) {
		o.system = true
		o.cacheDir = cacheDir
	}
}

// WithFaceCacheSize bounds the number of sized faces kept alive.
func WithFaceCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.faceCache = n
		}
	}
}

// WithFallback names the family used when a requested family is unknown.
// It must be one of the bundled families.
func WithFallback(family string) Option {
	return func(o *options) {
		if family != "" {
			o.fallback = family
		}
	}
}

// scanLogger adapts slog to the Printf logger fontscan expects.
type scanLogger struct{ l *slog.Logger }

func (s scanLogger) Printf(format string, args ...interface{}) {
	s.l.Debug("fonts: " + fmt.Sprintf(format, args...))
}
