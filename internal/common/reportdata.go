package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"

	"sxprof/internal/chart"
	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
	"sxprof/internal/report"
)

// RightAxisNone disables the right axis; an empty selector picks one from the samples.
const RightAxisNone = "none"

// ReportInput names the outputs of a run and how to plot them.
type ReportInput struct {
	LogPath     string
	PidstatPath string
	// NCores scales %CPU; zero means twice the thread count found in the log.
	NCores float64
	// Title defaults to the base name of the log.
	Title string
	Left  string
	Right string
}

// LoadReportData parses both files and composes the figure.
func LoadReportData(in ReportInput) (report.Data, error) {
	logger := slog.Default()
	summary, err := eventlog.Read(in.LogPath, logger)
	if err != nil {
		return report.Data{}, err
	}
	ncores := in.NCores
	if ncores <= 0 {
		ncores = DefaultNCores(summary)
	}
	samples, err := pidstat.Read(in.PidstatPath, pidstat.Options{NCores: ncores, Logger: logger})
	if err != nil {
		return report.Data{}, err
	}
	title := in.Title
	if title == "" {
		title = filepath.Base(in.LogPath)
	}
	right := in.Right
	switch right {
	case "":
		right = chart.DefaultRight(samples)
	case RightAxisNone:
		right = ""
	}
	spec, err := chart.NewPlotSpec(in.Left, right, title, ncores)
	if err != nil {
		return report.Data{}, err
	}
	fig, err := chart.Compose(samples, summary, spec)
	if err != nil {
		return report.Data{}, errors.Wrap(err, "failed to compose plot")
	}
	return report.Data{Title: title, Summary: summary, Samples: samples, Figure: fig, NCores: ncores}, nil
}

// DefaultNCores assumes the thread count was configured as one per core with
// two hardware threads each. Without a thread count the host's CPUs are used.
func DefaultNCores(summary *eventlog.Summary) float64 {
	if summary != nil && summary.ThreadCount != nil && *summary.ThreadCount > 0 {
		return float64(*summary.ThreadCount * 2)
	}
	n := runtime.NumCPU()
	slog.Warn("thread-count not found in log, scaling CPU by the local CPU count", slog.Int("ncores", n))
	return float64(n)
}
