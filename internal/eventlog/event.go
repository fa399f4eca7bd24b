// Package eventlog reads SourceXtractor++ log files and extracts the
// processing milestones and progress counters reported in them.
package eventlog

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"time"

	"sxprof/internal/timeparse"

	"github.com/pkg/errors"
)

// ErrMalformedLine is returned for lines that do not carry the four fixed
// fields followed by a message.
var ErrMalformedLine = errors.New("malformed log line")

// minFields is timestamp, logger, level, thread tag and at least one word of message
const minFields = 5

// LogEvent is one parsed log line.
type LogEvent struct {
	Elapsed float64 `json:"elapsed"` // seconds since the first event
	Logger  string  `json:"logger"`
	Level   string  `json:"level"`
	Message string  `json:"message"`
}

// LineParser turns raw lines into events. It remembers the timestamp of the
// first successfully parsed line, which is the origin of all elapsed times.
type LineParser struct {
	first   time.Time
	started bool
}

// Parse parses a single line.
func (p *LineParser) Parse(line string) (LogEvent, error) {
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return LogEvent{}, errors.Wrapf(ErrMalformedLine, "expected at least %d fields, found %d", minFields, len(fields))
	}
	ts, err := timeparse.Parse(fields[0])
	if err != nil {
		return LogEvent{}, err
	}
	if !p.started {
		p.first = ts
		p.started = true
	}
	return LogEvent{
		Elapsed: ts.Sub(p.first).Seconds(),
		Logger:  fields[1],
		Level:   fields[2],
		Message: messageField(line),
	}, nil
}

// messageField returns everything after the fourth field, keeping the
// message's own spacing.
func messageField(line string) string {
	rest := strings.TrimSpace(line)
	for range minFields - 1 {
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			return ""
		}
		rest = strings.TrimLeft(rest[idx:], " \t")
	}
	return strings.TrimSpace(rest)
}
