// Package timeparse converts the timestamp spellings found in SourceXtractor++
// logs and pidstat output into time values.
package timeparse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

// layouts are tried in order before falling back to dateparse.
var layouts = []string{
	"2006-01-02T15:04:05MST",
	"2006-01-02T15:04:05.999999999MST",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// clockLayouts carry no date; the result is placed on the current day.
var clockLayouts = []string{
	"15:04:05",
	"03:04:05 PM",
	"3:04:05 PM",
}

// Parse parses a log or sampler timestamp.
func Parse(value string) (time.Time, error) {
	value = normalizeMeridiem(strings.TrimSpace(value))
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			y, m, d := time.Now().Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local), nil
		}
	}
	t, err := dateparse.ParseLocal(value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "unrecognized timestamp %q", value)
	}
	return t, nil
}

// Seconds returns value as POSIX seconds. Plain numbers are taken as already
// being seconds, which is how pidstat -h prints its Time column.
func Seconds(value string) (float64, error) {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f, nil
	}
	t, err := Parse(value)
	if err != nil {
		return 0, err
	}
	return float64(t.UnixNano()) / float64(time.Second), nil
}

// IsMeridiem reports whether token is an AM/PM marker.
func IsMeridiem(token string) bool {
	switch strings.ToUpper(token) {
	case "AM", "PM":
		return true
	}
	return false
}

func normalizeMeridiem(value string) string {
	idx := strings.LastIndexByte(value, ' ')
	if idx < 0 || !IsMeridiem(value[idx+1:]) {
		return value
	}
	return value[:idx+1] + strings.ToUpper(value[idx+1:])
}
