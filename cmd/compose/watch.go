package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/scheduler"
)

// watchInterval is how often pending changes are rendered. Editors often
// write a file in several steps; they are coalesced into one render.
const watchInterval = 150 * time.Millisecond

// watchDocument renders the document now and again after every change
// until ctx is done.
func watchDocument(ctx context.Context, comp *compose.Compositor, j *job, logger *slog.Logger) error {
	abs, err := filepath.Abs(j.input)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors that save by rename replace the file
	// and would drop a watch on the file itself.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	sched := scheduler.New(func() error {
		if err := j.run(ctx, comp); err != nil {
			logger.Error("compose: render failed", "document", j.input, "err", err)
			return err
		}
		logger.Info("compose: rendered", "document", j.input, "output", j.output)
		return nil
	}, scheduler.NewTickerFrames(watchInterval), scheduler.WithLogger(logger))
	defer sched.Close()
	sched.Request()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				logger.Debug("compose: document changed", "op", ev.Op.String())
				sched.Request()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("compose: watch error", "err", err)
		}
	}
}
