// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package imagecache loads and decodes layer images once per key.
//
// A Cache maps a layer key to a future. The first Load or Request for a key
// starts one decode on its own goroutine; every later caller for the same
// key and URL shares that future. Reusing a key with a different URL
// replaces the entry and cancels the superseded load.
//
//	c := imagecache.New(imagecache.WithNotify(func(key string, err error) {
//		sched.Request()
//	}))
//	defer c.Close()
//
//	img, ready := c.Request("background", doc.Image.Background)
package imagecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrClosed is returned for loads on a closed cache.
	ErrClosed = errors.New("imagecache: cache is closed")

	// ErrUnsupportedSource is returned for a URL scheme no loader handles.
	ErrUnsupportedSource = errors.New("imagecache: unsupported source")

	// ErrNotImage is returned when sniffed content is not a known image.
	ErrNotImage = errors.New("imagecache: not an image")
)

// entry is the future for one key.
type entry struct {
	url    string
	done   chan struct{}
	cancel context.CancelFunc
	img    *Image
	err    error
}

func (e *entry) ready() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Cache memoises decoded images by key.
//
// Thread safety: all methods are safe for concurrent use.
type Cache struct {
	opts options

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		opts:    o,
		entries: make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// start returns the future for key, creating it when absent or when the
// key now points at a different URL. Callers must hold c.mu.
func (c *Cache) start(key, url string) *entry {
	if e, ok := c.entries[key]; ok {
		if e.url == url {
			return e
		}
		e.cancel()
		c.opts.logger.Debug("imagecache: source replaced", "key", key, "url", url)
	}

	ctx, cancel := context.WithCancel(c.ctx)
	e := &entry{url: url, done: make(chan struct{}), cancel: cancel}
	c.entries[key] = e

	c.wg.Add(1)
	go c.run(ctx, key, e)
	return e
}

func (c *Cache) run(ctx context.Context, key string, e *entry) {
	defer c.wg.Done()
	defer e.cancel()

	img, err := c.fetch(ctx, e.url)
	e.img, e.err = img, err
	close(e.done)

	if err != nil {
		c.opts.logger.Warn("imagecache: load failed", "key", key, "url", shortURL(e.url), "err", err)
	} else {
		c.opts.logger.Debug("imagecache: loaded", "key", key, "width", img.Width(), "height", img.Height())
	}

	// A superseded or released entry does not notify.
	c.mu.Lock()
	current := c.entries[key] == e
	c.mu.Unlock()
	if current && c.opts.notify != nil {
		c.opts.notify(key, err)
	}
}

func (c *Cache) fetch(ctx context.Context, url string) (*Image, error) {
	rc, err := c.opts.loader.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := decode(shortURL(url), rc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img.URL = url
	return img, nil
}

// Load returns the image for key, waiting for the decode if needed. A key
// whose previous load failed is retried.
func (c *Cache) Load(ctx context.Context, key, url string) (*Image, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	e := c.start(key, url)
	if e.ready() && e.err != nil {
		delete(c.entries, key)
		e = c.start(key, url)
	}
	c.mu.Unlock()

	select {
	case <-e.done:
		return e.img, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Request is the non-blocking probe used while rendering. It starts a load
// when none exists and reports whether a decoded image is available.
func (c *Cache) Request(key, url string) (*Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || url == "" {
		return nil, false
	}
	e := c.start(key, url)
	if !e.ready() || e.err != nil {
		return nil, false
	}
	return e.img, true
}

// Err returns the error of a finished load for key, if any.
func (c *Cache) Err(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.ready() {
		return e.err
	}
	return nil
}

// Release drops the entry for key and cancels its load.
func (c *Cache) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.cancel()
		delete(c.entries, key)
	}
}

// Retain drops every entry whose key is not in keys.
func (c *Cache) Retain(keys []string) {
	keep := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if _, ok := keep[k]; !ok {
			e.cancel()
			delete(c.entries, k)
		}
	}
}

// Len returns the number of entries, loaded or pending.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close cancels in-flight loads, waits for their goroutines and drops all
// entries. Later loads fail with ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

// shortURL keeps data: URLs out of log lines.
func shortURL(u string) string {
	const limit = 64
	if len(u) <= limit {
		return u
	}
	return fmt.Sprintf("%s...(%d bytes)", u[:limit], len(u))
}
