// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scheduler coalesces render requests into frames.
//
// Any number of Request or Invalidate calls between two frames result in a
// single call of the draw function on the next frame. Draws never overlap:
// frames and Flush are serialised.
//
//	s := scheduler.New(func() error {
//		return comp.Render(target, frame)
//	}, scheduler.NewTickerFrames(0))
//	defer s.Close()
//
//	store.Subscribe(s.Invalidate)
package scheduler

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used to report draw errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scheduler runs a draw function at most once per frame, and only when a
// frame has been requested.
//
// Thread safety: all methods are safe for concurrent use.
type Scheduler struct {
	draw   func() error
	logger *slog.Logger

	mu        sync.Mutex
	pending   bool
	closed    bool
	requested uint64 // highest version asked for
	rendered  uint64 // version current when the last draw started
	stop      func()

	drawMu sync.Mutex
	frames atomic.Uint64
}

// New starts a scheduler calling draw on frames from src.
func New(draw func() error, src FrameSource, opts ...Option) *Scheduler {
	s := &Scheduler{
		draw:   draw,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stop = src.Start(func(time.Time) { s.run() })
	return s
}

// Request marks the next frame dirty.
func (s *Scheduler) Request() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = true
}

// Invalidate requests a frame when version is newer than anything already
// rendered or requested.
func (s *Scheduler) Invalidate(version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || version <= s.rendered || version <= s.requested {
		return
	}
	s.requested = version
	s.pending = true
}

// Pending reports whether a frame is waiting to be drawn.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Frames returns the number of draws performed so far.
func (s *Scheduler) Frames() uint64 {
	return s.frames.Load()
}

// Flush draws synchronously if a frame is pending and returns the draw
// error.
func (s *Scheduler) Flush() error {
	return s.run()
}

func (s *Scheduler) run() error {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()

	s.mu.Lock()
	if !s.pending || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.pending = false
	if s.requested > s.rendered {
		s.rendered = s.requested
	}
	s.mu.Unlock()

	err := s.draw()
	s.frames.Add(1)
	if err != nil {
		s.logger.Debug("scheduler: draw failed", "err", err)
	}
	return err
}

// Close cancels any pending frame and stops the frame source. Requests
// made after Close are ignored. Close must not be called from the draw
// function.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = false
	stop := s.stop
	s.mu.Unlock()

	stop()
}
