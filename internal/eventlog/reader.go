package eventlog

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
)

const maxLineLength = 1024 * 1024

// Read parses the log file at path into a Summary.
func Read(path string, logger *slog.Logger) (*Summary, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log")
	}
	defer f.Close()
	summary, err := ReadFrom(f, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return summary, nil
}

// ReadFrom parses a log stream into a Summary. Lines that cannot be parsed
// are reported to logger and skipped.
func ReadFrom(r io.Reader, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tracker := NewTracker(logger)
	err := scanEvents(r, logger, tracker.Observe, tracker.Skip)
	if err != nil {
		return nil, err
	}
	return tracker.Summary(), nil
}

// ReadEvents returns every parseable event in r, in file order.
func ReadEvents(r io.Reader, logger *slog.Logger) ([]LogEvent, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var events []LogEvent
	err := scanEvents(r, logger, func(ev LogEvent) Kind {
		events = append(events, ev)
		return KindOther
	}, func() {})
	return events, err
}

func scanEvents(r io.Reader, logger *slog.Logger, onEvent func(LogEvent) Kind, onSkip func()) error {
	var parser LineParser
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		ev, err := parser.Parse(line)
		if err != nil {
			logger.Warn("skipping log line", slog.Int("line", lineNumber), slog.String("error", err.Error()))
			onSkip()
			continue
		}
		onEvent(ev)
	}
	return scanner.Err()
}
