package chart

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"

	"github.com/pkg/errors"

	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
)

const (
	backgroundLabel = "Background done"
	bandAlpha       = 0.35
)

// phases stacks the three processing phases bottom to top.
var phases = []struct {
	name     string
	interval func(*eventlog.Summary) eventlog.Interval
	bottom   float64
	top      float64
	color    string
}{
	{"Segmentation", func(s *eventlog.Summary) eventlog.Interval { return s.Segmentation }, 0, 1.0 / 3, ColorBandOrange},
	{"Deblending", func(s *eventlog.Summary) eventlog.Interval { return s.Deblending }, 1.0 / 3, 2.0 / 3, ColorPink},
	{"Measurement", func(s *eventlog.Summary) eventlog.Interval { return s.Measurement }, 2.0 / 3, 1, ColorLightGreen},
}

// Compose lays out samples and milestones according to spec. It fails when a
// selected series needs a column that was never sampled.
func Compose(samples *pidstat.Samples, summary *eventlog.Summary, spec PlotSpec) (*Figure, error) {
	if samples == nil {
		samples = &pidstat.Samples{}
	}
	if summary == nil {
		summary = &eventlog.Summary{}
	}
	in := inputs{samples: samples, summary: summary}
	fig := &Figure{Title: spec.Title, XLabel: "Time"}

	left, err := fig.place(in, spec.Left, AxisLeft)
	if err != nil {
		return nil, err
	}
	fig.Left = Axis{Series: spec.Left, Label: renderers[spec.Left].label}
	legend := left

	for _, ts := range summary.Background {
		fig.VLines = append(fig.VLines, VLine{Label: backgroundLabel, X: ts, Color: ColorBlack, Style: StyleDashed})
	}
	if len(summary.Background) > 0 {
		legend = append(legend, LegendEntry{Label: backgroundLabel, Color: ColorBlack, Style: StyleDashed})
	}

	for _, phase := range phases {
		interval := phase.interval(summary)
		d, ok := interval.Duration()
		if !ok {
			continue
		}
		band := Band{
			Label:  fmt.Sprintf("%s (%s)", phase.name, FormatElapsed(d)),
			Start:  *interval.Start,
			End:    *interval.End,
			Bottom: phase.bottom,
			Top:    phase.top,
			Color:  phase.color,
			Alpha:  bandAlpha,
		}
		fig.Bands = append(fig.Bands, band)
		legend = append(legend, LegendEntry{Label: band.Label, Color: band.Color, Style: StyleSolid, Fill: true})
	}

	if summary.Duration != nil {
		marker := VLine{
			Label: fmt.Sprintf("Duration (%s)", FormatElapsed(*summary.Duration)),
			X:     *summary.Duration,
			Color: ColorGray,
			Style: StyleSolid,
		}
		fig.VLines = append(fig.VLines, marker)
		legend = append(legend, LegendEntry{Label: marker.Label, Color: marker.Color, Style: marker.Style})
	}

	if spec.HasRight {
		right, err := fig.place(in, spec.Right, AxisRight)
		if err != nil {
			return nil, err
		}
		fig.Right = &Axis{Series: spec.Right, Label: renderers[spec.Right].label}
		legend = append(legend, right...)
	}

	fig.Legend = legend
	fig.computeRanges()
	return fig, nil
}

// place renders one series onto an axis and returns its legend entries.
func (f *Figure) place(in inputs, series Series, side AxisSide) ([]LegendEntry, error) {
	r, ok := renderers[series]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSeries, "%d", series)
	}
	drawn, err := r.render(in)
	if err != nil {
		return nil, errors.Wrapf(err, "%s series", series)
	}
	var legend []LegendEntry
	for _, l := range drawn.lines {
		l.Axis = side
		f.Lines = append(f.Lines, l)
		if !l.Unlisted {
			legend = append(legend, LegendEntry{Label: l.Label, Color: l.Color, Style: l.Style})
		}
	}
	for _, h := range drawn.hlines {
		h.Axis = side
		f.HLines = append(f.HLines, h)
		legend = append(legend, LegendEntry{Label: h.Label, Color: h.Color, Style: h.Style})
	}
	return legend, nil
}
