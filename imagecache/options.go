// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagecache

import (
	"io"
	"log/slog"
	"net/http"
)

// Option configures a Cache.
type Option func(*options)

type options struct {
	logger *slog.Logger
	loader Loader
	notify func(key string, err error)
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		loader: &SourceLoader{},
	}
}

// WithLogger sets the logger for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLoader replaces the source loader.
func WithLoader(l Loader) Option {
	return func(o *options) {
		if l != nil {
			o.loader = l
		}
	}
}

// WithHTTPClient sets the client used for http(s) sources by the default
// loader.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.loader = &SourceLoader{Client: c}
	}
}

// WithNotify registers fn to be called from the loading goroutine every
// time a load finishes, successfully or not.
func WithNotify(fn func(key string, err error)) Option {
	return func(o *options) {
		o.notify = fn
	}
}
