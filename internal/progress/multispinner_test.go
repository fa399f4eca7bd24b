package progress

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer lets the ticker goroutine and the test share the output
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewMultiSpinner(t *testing.T) {
	spinner := NewMultiSpinner()
	if spinner == nil {
		t.Fatal("failed to create a spinner")
	}
}

func TestMultiSpinner(t *testing.T) {
	var out lockedBuffer
	spinner := NewMultiSpinnerTo(&out, false)
	require.NoError(t, spinner.AddSpinner("sourcextractor++"))
	require.NoError(t, spinner.AddSpinner("pidstat"))
	assert.Error(t, spinner.AddSpinner("pidstat"), "added spinner with same label")
	spinner.Start()

	assert.NoError(t, spinner.Status("sourcextractor++", "running"))
	assert.NoError(t, spinner.Status("pidstat", "sampling"))
	assert.Error(t, spinner.Status("missing", "WOOPS"))
	spinner.Finish()
	// a second Finish is a no-op
	spinner.Finish()

	text := out.String()
	assert.Contains(t, text, "running")
	assert.Contains(t, text, "sampling")
	assert.NotContains(t, text, "\x1b[1A")
}

func TestMultiSpinnerPrintsChangesOnce(t *testing.T) {
	var out lockedBuffer
	spinner := NewMultiSpinnerTo(&out, false)
	require.NoError(t, spinner.AddSpinner("pidstat"))
	require.NoError(t, spinner.Status("pidstat", "sampling"))
	spinner.Start()
	require.NoError(t, spinner.Status("pidstat", "sampling"))
	spinner.Finish()
	assert.Equal(t, 1, strings.Count(out.String(), "sampling"))
}
