// Package chart composes resource samples and log milestones into a
// backend-neutral dual-axis time figure.
package chart

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"sxprof/internal/pidstat"
)

// Series names a plottable quantity.
type Series int

const (
	SeriesCPU Series = iota
	SeriesMemory
	SeriesIO
	SeriesSources
	SeriesSegmented
)

var seriesNames = []string{"cpu", "memory", "io", "sources", "segmented"}

var ErrUnknownSeries = errors.New("unknown series")

func (s Series) String() string {
	if s < 0 || int(s) >= len(seriesNames) {
		return "unknown"
	}
	return seriesNames[s]
}

// MarshalText encodes the selector name.
func (s Series) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SeriesNames returns the accepted series selectors in display order.
func SeriesNames() []string {
	return slices.Clone(seriesNames)
}

// ParseSeries maps a selector to its Series.
func ParseSeries(name string) (Series, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !mapset.NewSet(seriesNames...).Contains(name) {
		return 0, errors.Wrapf(ErrUnknownSeries, "%q, choose from: %s", name, strings.Join(seriesNames, ", "))
	}
	return Series(slices.Index(seriesNames, name)), nil
}

// PlotSpec selects what goes on each axis.
type PlotSpec struct {
	Left     Series
	Right    Series
	HasRight bool
	Title    string
	// NCores is the core count the CPU column was scaled with.
	NCores float64
}

// NewPlotSpec validates the selectors. An empty right selector leaves the
// secondary axis unused.
func NewPlotSpec(left, right, title string, ncores float64) (PlotSpec, error) {
	spec := PlotSpec{Title: title, NCores: ncores}
	var err error
	if spec.Left, err = ParseSeries(left); err != nil {
		return PlotSpec{}, errors.Wrap(err, "left axis")
	}
	if right == "" {
		return spec, nil
	}
	if spec.Right, err = ParseSeries(right); err != nil {
		return PlotSpec{}, errors.Wrap(err, "right axis")
	}
	spec.HasRight = true
	return spec, nil
}

// DefaultRight picks the secondary series from what was sampled: memory
// when RSS is present, otherwise read activity, otherwise nothing.
func DefaultRight(samples *pidstat.Samples) string {
	switch {
	case samples.Has("RSS"):
		return SeriesMemory.String()
	case samples.Has("kB_rd/s"):
		return SeriesIO.String()
	}
	return ""
}
