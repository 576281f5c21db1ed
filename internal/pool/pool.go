// Package pool provides reusable offscreen drawing contexts.
package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gg"

	"github.com/gogpu/compose/internal/lru"
)

// ErrInvalidSize is returned when a buffer with a non-positive dimension is
// requested.
var ErrInvalidSize = errors.New("pool: invalid buffer size")

// DefaultMaxSizes is the number of distinct buffer sizes kept idle when New
// is given zero.
const DefaultMaxSizes = 8

// Pool hands out scratch *gg.Context buffers grouped by size.
//
// Every buffer obtained with Get must be handed back with Put once the
// caller is done with it. Buffers come back cleared, with an identity
// transform and no clip or mask.
//
// Idle buffers are kept for at most maxSizes distinct sizes. When a new
// size is returned to a full pool, the buffers of the least recently used
// size are closed. Sizes that change continuously, like an overlay being
// scaled, therefore do not accumulate.
//
// Thread safety: all methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets *lru.Cache[size, []*gg.Context]
	maxSize int // max buffers per bucket
	live    int // buffers handed out and not yet returned
}

type size struct {
	width  int
	height int
}

// New creates a pool retaining at most maxPerBucket idle buffers of each
// size, for at most maxSizes sizes. A maxPerBucket of 0 means unlimited
// per size; a maxSizes of 0 means DefaultMaxSizes.
func New(maxPerBucket, maxSizes int) *Pool {
	if maxSizes <= 0 {
		maxSizes = DefaultMaxSizes
	}
	buckets := lru.New[size, []*gg.Context](maxSizes)
	buckets.OnEvict(func(_ size, bucket []*gg.Context) {
		for _, dc := range bucket {
			_ = dc.Close()
		}
	})
	return &Pool{buckets: buckets, maxSize: maxPerBucket}
}

// Get returns a cleared buffer of the given size.
func (p *Pool) Get(width, height int) (*gg.Context, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	key := size{width: width, height: height}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.live++
	if bucket, ok := p.buckets.Get(key); ok && len(bucket) > 0 {
		n := len(bucket)
		dc := bucket[n-1]
		// Store the shortened bucket before any delete so eviction never
		// sees the buffer being handed out.
		p.buckets.Set(key, bucket[:n-1])
		if n == 1 {
			p.buckets.Delete(key)
		}
		return dc, nil
	}
	return gg.NewContext(width, height), nil
}

// Put resets dc and returns it to the pool. If the bucket is full the
// buffer is closed instead.
func (p *Pool) Put(dc *gg.Context) {
	if dc == nil {
		return
	}
	reset(dc)
	key := size{width: dc.Width(), height: dc.Height()}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.live--
	bucket, _ := p.buckets.Get(key)
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		_ = dc.Close()
		return
	}
	p.buckets.Set(key, append(bucket, dc))
}

// Idle returns the number of buffers waiting for reuse.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, k := range p.buckets.Keys() {
		b, _ := p.buckets.Peek(k)
		n += len(b)
	}
	return n
}

// Sizes returns the number of distinct sizes with idle buffers.
func (p *Pool) Sizes() int {
	return p.buckets.Len()
}

// Live returns the number of buffers handed out and not yet returned.
func (p *Pool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Drain closes and drops every idle buffer.
func (p *Pool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets.Clear()
}

func reset(dc *gg.Context) {
	dc.Identity()
	dc.ResetClip()
	dc.ClearMask()
	dc.ClearPath()
	dc.Clear()
}
