package runner

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultPollInterval = time.Second

// follower streams the lines appended to a file that another process writes.
// The file may not exist yet when following starts.
type follower struct {
	path         string
	pollInterval time.Duration
	logger       *slog.Logger

	file    *os.File
	reader  *bufio.Reader
	partial string
}

func newFollower(path string, logger *slog.Logger) *follower {
	return &follower{path: filepath.Clean(path), pollInterval: defaultPollInterval, logger: logger}
}

// run calls onLine for every complete line until ctx is done. Whatever is in
// the file at that point is still delivered, including an unterminated last line.
func (f *follower) run(ctx context.Context, onLine func(string)) error {
	defer f.close()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// fsnotify misses writes on some network filesystems, the ticker covers them
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		f.logger.Debug("polling file without notifications", slog.String("path", f.path), slog.String("error", err.Error()))
	}
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	f.drain(onLine)
	for {
		select {
		case <-ctx.Done():
			f.drain(onLine)
			if f.partial != "" {
				onLine(f.partial)
				f.partial = ""
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Create) {
				// recreated, start over
				f.close()
			}
			f.drain(onLine)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("file watch error", slog.String("path", f.path), slog.String("error", err.Error()))
		case <-ticker.C:
			f.drain(onLine)
		}
	}
}

func (f *follower) drain(onLine func(string)) {
	if f.file == nil {
		file, err := os.Open(f.path) // #nosec G304
		if err != nil {
			return
		}
		f.file = file
		f.reader = bufio.NewReader(file)
	}
	for {
		chunk, err := f.reader.ReadString('\n')
		if err != nil {
			// EOF for now; keep the fragment until its newline arrives
			f.partial += chunk
			return
		}
		onLine(strings.TrimRight(f.partial+chunk, "\r\n"))
		f.partial = ""
	}
}

func (f *follower) close() {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
		f.reader = nil
		f.partial = ""
	}
}
