// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// watchDelay is how long a change must settle before rendering again.
// Benchmarks append to their logs line by line.
var watchDelay = 500 * time.Millisecond

// watch calls render after each burst of changes to a log in dir or to
// the configuration file, until ctx is done.
func watch(ctx context.Context, log *zap.SugaredLogger, dir, config string, render func(context.Context)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if dir == "" {
		dir = "."
	}
	dirs := []string{dir}
	if config != "" && filepath.Clean(filepath.Dir(config)) != filepath.Clean(dir) {
		// Editors replace files rather than write them, so watch the
		// directory.
		dirs = append(dirs, filepath.Dir(config))
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}
	log.Infow("watching for changes", "dirs", dirs)

	relevant := func(name string) bool {
		if config != "" && filepath.Clean(name) == filepath.Clean(config) {
			return true
		}
		return strings.HasSuffix(name, ".csv")
	}
	return debounce(ctx, log, w.Events, w.Errors, relevant, watchDelay, render)
}

// debounce calls render once delay has passed without another relevant
// event. It returns when ctx is done or events is closed.
func debounce(ctx context.Context, log *zap.SugaredLogger, events <-chan fsnotify.Event, errs <-chan error, relevant func(string) bool, delay time.Duration, render func(context.Context)) error {
	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !relevant(ev.Name) {
				continue
			}
			log.Debugw("change", "file", ev.Name, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(delay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.Warnw("watch error", "error", err)
		case <-fire:
			render(ctx)
		}
	}
}

// schedule calls render on the cron schedule expr until ctx is done. A
// run that is still going when the next is due makes the next one skip.
func schedule(ctx context.Context, log *zap.SugaredLogger, expr string, render func(context.Context)) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(expr, func() { render(ctx) }); err != nil {
		return fmt.Errorf("bad schedule %q: %w", expr, err)
	}
	c.Start()
	log.Infow("rendering on schedule", "schedule", expr)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
