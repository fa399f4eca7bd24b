package chart

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"math"

	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
)

// MovingAverageWindow is the number of samples averaged around each CPU point.
const MovingAverageWindow = 60

type inputs struct {
	samples *pidstat.Samples
	summary *eventlog.Summary
}

// artists are what a series renderer draws; the composer assigns the axis.
type artists struct {
	lines  []Line
	hlines []HLine
}

type seriesRenderer struct {
	label  string
	render func(inputs) (artists, error)
}

var renderers = map[Series]seriesRenderer{
	SeriesCPU:       {label: "Number of CPU", render: renderCPU},
	SeriesMemory:    {label: "MiB", render: renderMemory},
	SeriesIO:        {label: "MB/s", render: renderIO},
	SeriesSources:   {label: "Sources", render: renderSources},
	SeriesSegmented: {label: "Lines", render: renderSegmented},
}

func renderCPU(in inputs) (artists, error) {
	times, cpu, err := sampled(in.samples, "CPU", 1)
	if err != nil {
		return artists{}, err
	}
	a := artists{lines: []Line{
		{Label: "CPU", X: times, Y: cpu, Color: ColorBlue, Style: StyleSolid, Alpha: 1},
		{Label: "CPU moving average", X: times, Y: MovingAverage(cpu, MovingAverageWindow), Color: ColorCyan, Style: StyleSolid, Alpha: 0.5, Unlisted: true},
	}}
	if in.summary.ThreadCount != nil {
		a.hlines = append(a.hlines, HLine{Label: "thread-number", Y: float64(*in.summary.ThreadCount), Color: ColorRed, Style: StyleDashed})
	}
	return a, nil
}

func renderMemory(in inputs) (artists, error) {
	times, rss, err := sampled(in.samples, "RSS", 1024)
	if err != nil {
		return artists{}, err
	}
	a := artists{lines: []Line{{Label: "RSS", X: times, Y: rss, Color: ColorDeepPink, Style: StyleDashDot, Alpha: 1}}}
	if in.summary.TileMemoryLimit != nil {
		a.hlines = append(a.hlines, HLine{Label: "tile-memory-limit", Y: float64(*in.summary.TileMemoryLimit), Color: ColorGray, Style: StyleDashed})
	}
	return a, nil
}

func renderIO(in inputs) (artists, error) {
	times, read, err := sampled(in.samples, "kB_rd/s", 1024)
	if err != nil {
		return artists{}, err
	}
	return artists{lines: []Line{{Label: "Read activity", X: times, Y: read, Color: ColorGray, Style: StyleDotted, Alpha: 1}}}, nil
}

func renderSources(in inputs) (artists, error) {
	return artists{lines: []Line{
		pointLine("Detected", in.summary.Detected, ColorBlue),
		pointLine("Deblended", in.summary.Deblended, ColorOrange),
		pointLine("Measured", in.summary.Measured, ColorGreen),
	}}, nil
}

func renderSegmented(in inputs) (artists, error) {
	return artists{lines: []Line{pointLine("Segmented lines", in.summary.Segmented, ColorPurple)}}, nil
}

// sampled returns the Time column and another column divided by scale.
func sampled(samples *pidstat.Samples, column string, scale float64) ([]float64, []float64, error) {
	times, err := samples.Float(pidstat.TimeColumn)
	if err != nil {
		return nil, nil, err
	}
	values, err := samples.Float(column)
	if err != nil {
		return nil, nil, err
	}
	if scale != 1 {
		for i := range values {
			values[i] /= scale
		}
	}
	return times, values, nil
}

func pointLine(label string, points []eventlog.Point, color string) Line {
	line := Line{Label: label, Color: color, Style: StyleSolid, Alpha: 1}
	line.X = make([]float64, len(points))
	line.Y = make([]float64, len(points))
	for i, p := range points {
		line.X[i] = p.Time
		line.Y[i] = float64(p.Value)
	}
	return line
}

// MovingAverage is a centered box filter whose output has the same length as
// the input. Every point is divided by the full window, so the edges taper
// toward zero. NaN samples contribute nothing.
func MovingAverage(values []float64, window int) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n == 0 || window <= 0 {
		return out
	}
	// prefix sums over the NaN-free values
	prefix := make([]float64, n+1)
	for i, v := range values {
		if math.IsNaN(v) {
			v = 0
		}
		prefix[i+1] = prefix[i] + v
	}
	offset := (min(window, n) - 1) / 2
	for i := range out {
		hi := i + offset
		lo := hi - window + 1
		hi = min(hi, n-1)
		lo = max(lo, 0)
		if hi < lo {
			continue
		}
		out[i] = (prefix[hi+1] - prefix[lo]) / float64(window)
	}
	return out
}
