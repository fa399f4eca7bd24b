package eventlog

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Point is one report of a progress counter.
type Point struct {
	Time  float64 `json:"time"`
	Value int     `json:"value"`
}

// Interval is the approximate extent of a processing phase. Either bound is
// nil until it has been observed.
type Interval struct {
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// Complete reports whether both bounds are known.
func (i Interval) Complete() bool {
	return i.Start != nil && i.End != nil
}

// Duration returns End - Start when both bounds are known.
func (i Interval) Duration() (float64, bool) {
	if !i.Complete() {
		return 0, false
	}
	return *i.End - *i.Start, true
}

// Summary aggregates everything extracted from one log file.
type Summary struct {
	ThreadCount       *int           `json:"thread_count"`
	TileMemoryLimit   *int           `json:"tile_memory_limit"`
	Background        []float64      `json:"background"`
	Segmentation      Interval       `json:"segmentation"`
	Deblending        Interval       `json:"deblending"`
	Measurement       Interval       `json:"measurement"`
	Duration          *float64       `json:"duration"`
	Detected          []Point        `json:"detected"`
	Deblended         []Point        `json:"deblended"`
	Measured          []Point        `json:"measured"`
	Segmented         []Point        `json:"segmented"`
	SegmentationTotal int            `json:"segmentation_total"`
	Levels            map[string]int `json:"levels"`
	Lines             int            `json:"lines"`
	Skipped           int            `json:"skipped"`
}

// Kind classifies a log message.
type Kind int

const (
	KindOther Kind = iota
	KindThreadCount
	KindTileMemoryLimit
	KindBackground
	KindSegmentation
	KindDetected
	KindMeasured
	KindDeblended
	KindInvalid
)

var kindNames = map[Kind]string{
	KindOther:           "other",
	KindThreadCount:     "thread-count",
	KindTileMemoryLimit: "tile-memory-limit",
	KindBackground:      "background",
	KindSegmentation:    "segmentation",
	KindDetected:        "detected",
	KindMeasured:        "measured",
	KindDeblended:       "deblended",
	KindInvalid:         "invalid",
}

func (k Kind) String() string {
	return kindNames[k]
}

// durationEstimator approximates the run duration as the time between the
// first and the latest message that is not a recognized milestone. It is a
// proxy, not a measurement of the real end-to-end runtime.
type durationEstimator struct {
	reference float64
	seen      bool
	duration  *float64
}

func (d *durationEstimator) observe(elapsed float64) {
	if !d.seen {
		d.reference = elapsed
		d.seen = true
		return
	}
	v := elapsed - d.reference
	d.duration = &v
}

// Tracker classifies events one at a time and accumulates a Summary.
type Tracker struct {
	summary      Summary
	segmentedMax int
	deblendedMax int
	measuredMax  int
	duration     durationEstimator
	logger       *slog.Logger
}

// NewTracker returns an empty tracker. Warnings go to logger; nil discards them.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		summary: Summary{Levels: map[string]int{}},
		logger:  logger,
	}
}

// Skip records a line that could not be parsed.
func (t *Tracker) Skip() {
	t.summary.Skipped++
}

// Observe classifies ev and updates the summary.
func (t *Tracker) Observe(ev LogEvent) Kind {
	t.summary.Lines++
	t.summary.Levels[ev.Level]++
	kind, err := t.classify(ev)
	if err != nil {
		t.logger.Warn("ignoring unparsable milestone", slog.String("message", ev.Message), slog.String("error", err.Error()))
		t.summary.Skipped++
		return KindInvalid
	}
	return kind
}

func (t *Tracker) classify(ev LogEvent) (Kind, error) {
	m := ev.Message
	elapsed := ev.Elapsed
	switch {
	case strings.HasPrefix(m, "thread-count ="):
		n, err := assignedInt(m)
		if err != nil {
			return KindInvalid, err
		}
		t.summary.ThreadCount = &n
		return KindThreadCount, nil
	case strings.HasPrefix(m, "tile-memory-limit ="):
		n, err := assignedInt(m)
		if err != nil {
			return KindInvalid, err
		}
		t.summary.TileMemoryLimit = &n
		return KindTileMemoryLimit, nil
	case strings.HasPrefix(m, "Background for image"):
		t.summary.Background = append(t.summary.Background, elapsed)
		return KindBackground, nil
	case strings.HasPrefix(m, "Segmentation"):
		fields := strings.Fields(m)
		if len(fields) < 4 {
			return KindInvalid, errors.Errorf("expected 'Segmentation <line> of <total>', got %d fields", len(fields))
		}
		line, err := strconv.Atoi(fields[1])
		if err != nil {
			return KindInvalid, errors.Wrap(err, "segmentation line")
		}
		total, err := strconv.Atoi(fields[3])
		if err != nil {
			return KindInvalid, errors.Wrap(err, "segmentation total")
		}
		if line > 0 && t.summary.Segmentation.Start == nil {
			t.summary.Segmentation.Start = ptr(elapsed)
		}
		if line > t.segmentedMax {
			t.summary.Segmentation.End = ptr(elapsed)
			t.segmentedMax = line
		}
		t.summary.SegmentationTotal = max(t.summary.SegmentationTotal, total)
		t.summary.Segmented = append(t.summary.Segmented, Point{Time: elapsed, Value: line})
		return KindSegmentation, nil
	case strings.HasPrefix(m, "Detected"):
		n, err := countField(m, 2)
		if err != nil {
			return KindInvalid, err
		}
		t.summary.Detected = append(t.summary.Detected, Point{Time: elapsed, Value: n})
		return KindDetected, nil
	case strings.HasPrefix(m, "Measured"):
		if len(strings.Fields(m)) <= 2 {
			// progress lines without a source count carry nothing to track
			return KindOther, nil
		}
		n, err := countField(m, 3)
		if err != nil {
			return KindInvalid, err
		}
		if t.summary.Measurement.Start == nil {
			t.summary.Measurement.Start = ptr(elapsed)
		}
		if n > t.measuredMax {
			t.summary.Measurement.End = ptr(elapsed)
			t.measuredMax = n
		}
		t.summary.Measured = append(t.summary.Measured, Point{Time: elapsed, Value: n})
		return KindMeasured, nil
	case strings.HasPrefix(m, "Deblended"):
		n, err := countField(m, 2)
		if err != nil {
			return KindInvalid, err
		}
		if n > t.deblendedMax {
			if t.deblendedMax == 0 {
				t.summary.Deblending.Start = ptr(elapsed)
			}
			t.summary.Deblending.End = ptr(elapsed)
			t.deblendedMax = n
		}
		t.summary.Deblended = append(t.summary.Deblended, Point{Time: elapsed, Value: n})
		return KindDeblended, nil
	}
	t.duration.observe(elapsed)
	return KindOther, nil
}

// Summary returns a snapshot of the accumulated summary with the
// end-of-input defaults applied.
func (t *Tracker) Summary() *Summary {
	s := t.summary
	s.Background = slices.Clone(s.Background)
	s.Detected = slices.Clone(s.Detected)
	s.Deblended = slices.Clone(s.Deblended)
	s.Measured = slices.Clone(s.Measured)
	s.Segmented = slices.Clone(s.Segmented)
	s.Levels = maps.Clone(s.Levels)
	s.Duration = t.duration.duration
	// segmentation rarely reports its final line; deblending follows it closely
	if s.Segmentation.End == nil {
		s.Segmentation.End = s.Deblending.End
	}
	return &s
}

// assignedInt parses the integer on the right of "key = N".
func assignedInt(message string) (int, error) {
	_, value, found := strings.Cut(message, "=")
	if !found {
		return 0, errors.Errorf("no value in %q", message)
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrapf(err, "value of %q", message)
	}
	return n, nil
}

// countField parses the second word of message as a count, requiring at
// least minWords words.
func countField(message string, minWords int) (int, error) {
	fields := strings.Fields(message)
	if len(fields) < minWords {
		return 0, errors.Errorf("expected at least %d words in %q", minWords, message)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, errors.Wrapf(err, "count in %q", message)
	}
	return n, nil
}

func ptr[T any](v T) *T {
	return &v
}
