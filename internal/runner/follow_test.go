package runner

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineCollector struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCollector) add(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *lineCollector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.lines...)
}

func TestFollowerReadsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sourcextractor.log")
	f := newFollower(path, slog.New(slog.DiscardHandler))
	f.pollInterval = 20 * time.Millisecond

	var collected lineCollector
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- f.run(ctx, collected.add)
	}()

	// the file does not exist when following starts
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	_, err = file.WriteString("first\nsec")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(collected.get()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"first"}, collected.get())

	_, err = file.WriteString("ond\r\nthird")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(collected.get()) == 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("follower did not stop")
	}
	// the unterminated line is delivered on stop
	assert.Equal(t, []string{"first", "second", "third"}, collected.get())
}

func TestFollowerStopsWithoutFile(t *testing.T) {
	f := newFollower(filepath.Join(t.TempDir(), "never"), slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var collected lineCollector
	require.NoError(t, f.run(ctx, collected.add))
	assert.Empty(t, collected.get())
}
