// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scheduler

import (
	"sync"
	"time"
)

// DefaultInterval is the frame interval of a TickerFrames source created
// with a zero interval.
const DefaultInterval = time.Second / 60

// FrameSource delivers frame callbacks.
//
// Start arranges for fn to be called once per frame until the returned
// stop function is called. A source never calls fn concurrently with
// itself.
type FrameSource interface {
	Start(fn func(now time.Time)) (stop func())
}

// TickerFrames is a FrameSource driven by a time.Ticker.
type TickerFrames struct {
	Interval time.Duration
}

// NewTickerFrames returns a ticker source at the given interval, or at
// DefaultInterval when interval is not positive.
func NewTickerFrames(interval time.Duration) *TickerFrames {
	return &TickerFrames{Interval: interval}
}

// Start implements FrameSource.
func (t *TickerFrames) Start(fn func(time.Time)) func() {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case now := <-ticker.C:
				fn(now)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(quit)
			<-done
		})
	}
}

// ManualFrames is a FrameSource advanced explicitly with Tick. It is used
// for tests and one-shot exports.
type ManualFrames struct {
	mu sync.Mutex
	fn func(time.Time)
}

// NewManualFrames returns a source that only produces frames on Tick.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{}
}

// Start implements FrameSource.
func (m *ManualFrames) Start(fn func(time.Time)) func() {
	m.mu.Lock()
	m.fn = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.fn = nil
		m.mu.Unlock()
	}
}

// Tick runs one frame on the calling goroutine. It reports false when the
// source is not started.
func (m *ManualFrames) Tick() bool {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(time.Now())
	return true
}
