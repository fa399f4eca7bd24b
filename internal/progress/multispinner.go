// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

/*
Package progress shows the status of the profiled processes on the terminal.
*/
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinChars []string = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

type spinnerState struct {
	label       string
	status      string
	statusIsNew bool
	spinIndex   int
}

// MultiSpinner draws one status line per label. Status may be called from any goroutine.
type MultiSpinner struct {
	mu       sync.Mutex
	out      io.Writer
	isTerm   bool
	spinners []spinnerState
	ticker   *time.Ticker
	done     chan bool
	spinning bool
}

// NewMultiSpinner creates a MultiSpinner drawing to stderr
func NewMultiSpinner() *MultiSpinner {
	return NewMultiSpinnerTo(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewMultiSpinnerTo creates a MultiSpinner drawing to out. When isTerm is false
// the cursor is never moved and only changed statuses are printed.
func NewMultiSpinnerTo(out io.Writer, isTerm bool) *MultiSpinner {
	return &MultiSpinner{
		out:    out,
		isTerm: isTerm,
		done:   make(chan bool),
	}
}

// AddSpinner adds a spinner to the MultiSpinner
func (ms *MultiSpinner) AddSpinner(label string) (err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	// make sure label is unique
	for _, spinner := range ms.spinners {
		if spinner.label == label {
			err = fmt.Errorf("spinner with label %s already exists", label)
			return
		}
	}
	ms.spinners = append(ms.spinners, spinnerState{label, "?", false, 0})
	return
}

// Start starts the spinner
func (ms *MultiSpinner) Start() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.spinning {
		return
	}
	ms.draw(true)
	ms.ticker = time.NewTicker(250 * time.Millisecond)
	ms.spinning = true
	go ms.onTick()
}

// Finish stops the spinner and leaves the final statuses on screen
func (ms *MultiSpinner) Finish() {
	ms.mu.Lock()
	spinning := ms.spinning
	ms.spinning = false
	ms.mu.Unlock()
	if !spinning {
		return
	}
	ms.ticker.Stop()
	ms.done <- true
	ms.mu.Lock()
	ms.draw(false)
	ms.mu.Unlock()
}

// Status updates the status of a spinner
func (ms *MultiSpinner) Status(label string, status string) (err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for spinnerIdx, spinner := range ms.spinners {
		if spinner.label == label {
			if status != spinner.status {
				ms.spinners[spinnerIdx].status = status
				ms.spinners[spinnerIdx].statusIsNew = true
			}
			return
		}
	}
	err = fmt.Errorf("did not find spinner with label %s", label)
	return
}

func (ms *MultiSpinner) onTick() {
	for {
		select {
		case <-ms.done:
			return
		case <-ms.ticker.C:
			ms.mu.Lock()
			ms.draw(true)
			ms.mu.Unlock()
		}
	}
}

// draw must be called with mu held
func (ms *MultiSpinner) draw(goUp bool) {
	for i, spinner := range ms.spinners {
		if !ms.isTerm && !spinner.statusIsNew {
			continue
		}
		fmt.Fprintf(ms.out, "%-20s  %s  %-40s\n", spinner.label, spinChars[spinner.spinIndex], spinner.status)
		ms.spinners[i].statusIsNew = false
		ms.spinners[i].spinIndex += 1
		if ms.spinners[i].spinIndex >= len(spinChars) {
			ms.spinners[i].spinIndex = 0
		}
	}
	if goUp && ms.isTerm {
		for range ms.spinners {
			fmt.Fprintf(ms.out, "\x1b[1A")
		}
	}
}
