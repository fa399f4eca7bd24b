package chart

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"math"
)

// AxisSide says which Y axis an artist is drawn against.
type AxisSide string

const (
	AxisLeft  AxisSide = "left"
	AxisRight AxisSide = "right"
)

// LineStyle mirrors the dash patterns every backend can draw.
type LineStyle string

const (
	StyleSolid   LineStyle = "solid"
	StyleDashed  LineStyle = "dashed"
	StyleDotted  LineStyle = "dotted"
	StyleDashDot LineStyle = "dashdot"
)

// Colors are "#rrggbb" so they can be handed to both CSS and go-chart.
const (
	ColorBlue       = "#1f77b4"
	ColorOrange     = "#ff7f0e"
	ColorGreen      = "#2ca02c"
	ColorPurple     = "#9467bd"
	ColorRed        = "#ff0000"
	ColorBlack      = "#000000"
	ColorCyan       = "#00ffff"
	ColorDeepPink   = "#ff1493"
	ColorGray       = "#808080"
	ColorBandOrange = "#ffa500"
	ColorPink       = "#ffc0cb"
	ColorLightGreen = "#90ee90"
)

// Axis is a Y axis and its computed range.
type Axis struct {
	Series Series  `json:"series"`
	Label  string  `json:"label"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Line is a polyline in data coordinates.
type Line struct {
	Label string    `json:"label"`
	Axis  AxisSide  `json:"axis"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Color string    `json:"color"`
	Style LineStyle `json:"style"`
	Alpha float64   `json:"alpha"`
	// Unlisted lines stay out of the legend.
	Unlisted bool `json:"unlisted,omitempty"`
}

// HLine is a horizontal reference line across the whole X range.
type HLine struct {
	Label string    `json:"label"`
	Axis  AxisSide  `json:"axis"`
	Y     float64   `json:"y"`
	Color string    `json:"color"`
	Style LineStyle `json:"style"`
}

// VLine is a vertical marker spanning the full height of the left axis.
type VLine struct {
	Label string    `json:"label"`
	X     float64   `json:"x"`
	Color string    `json:"color"`
	Style LineStyle `json:"style"`
}

// Band is a shaded X interval. Bottom and Top are fractions of the plot
// height, not data values.
type Band struct {
	Label  string  `json:"label"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
	Color  string  `json:"color"`
	Alpha  float64 `json:"alpha"`
}

// LegendEntry is one row of the combined legend.
type LegendEntry struct {
	Label string    `json:"label"`
	Color string    `json:"color"`
	Style LineStyle `json:"style"`
	// Fill is set for band entries.
	Fill bool `json:"fill,omitempty"`
}

// Figure is everything a backend needs to draw the chart. Ranges are final;
// backends must not autoscale.
type Figure struct {
	Title  string        `json:"title"`
	XLabel string        `json:"x_label"`
	XMin   float64       `json:"x_min"`
	XMax   float64       `json:"x_max"`
	Left   Axis          `json:"left"`
	Right  *Axis         `json:"right,omitempty"`
	Lines  []Line        `json:"lines"`
	HLines []HLine       `json:"hlines"`
	VLines []VLine       `json:"vlines"`
	Bands  []Band        `json:"bands"`
	Legend []LegendEntry `json:"legend"`
}

// BandY converts a band's relative heights into left-axis data values.
func (f *Figure) BandY(b Band) (bottom, top float64) {
	span := f.Left.Max - f.Left.Min
	return f.Left.Min + b.Bottom*span, f.Left.Min + b.Top*span
}

// LinesOn returns the lines drawn against one axis.
func (f *Figure) LinesOn(side AxisSide) []Line {
	var lines []Line
	for _, l := range f.Lines {
		if l.Axis == side {
			lines = append(lines, l)
		}
	}
	return lines
}

// HLinesOn returns the reference lines drawn against one axis.
func (f *Figure) HLinesOn(side AxisSide) []HLine {
	var lines []HLine
	for _, l := range f.HLines {
		if l.Axis == side {
			lines = append(lines, l)
		}
	}
	return lines
}

// extent accumulates the finite min/max of a set of values.
type extent struct {
	min, max float64
	ok       bool
}

func (e *extent) add(values ...float64) {
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		if !e.ok {
			e.min, e.max, e.ok = v, v, true
			continue
		}
		e.min = min(e.min, v)
		e.max = max(e.max, v)
	}
}

// yRange anchors the axis at zero and leaves 5% headroom.
func (e extent) yRange() (float64, float64) {
	if !e.ok {
		return 0, 1
	}
	lo := min(0, e.min)
	hi := e.max * 1.05
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func (e extent) xRange() (float64, float64) {
	if !e.ok {
		return 0, 1
	}
	if e.max <= e.min {
		return e.min, e.min + 1
	}
	return e.min, e.max
}

// computeRanges fixes both Y ranges and the X range from every artist.
func (f *Figure) computeRanges() {
	var x extent
	ys := map[AxisSide]*extent{AxisLeft: {}, AxisRight: {}}
	for _, l := range f.Lines {
		x.add(l.X...)
		ys[l.Axis].add(l.Y...)
	}
	for _, h := range f.HLines {
		ys[h.Axis].add(h.Y)
	}
	for _, v := range f.VLines {
		x.add(v.X)
	}
	for _, b := range f.Bands {
		x.add(b.Start, b.End)
	}
	f.XMin, f.XMax = x.xRange()
	f.Left.Min, f.Left.Max = ys[AxisLeft].yRange()
	if f.Right != nil {
		f.Right.Min, f.Right.Max = ys[AxisRight].yRange()
	}
}

// FormatElapsed renders seconds as H:MM:SS. Fractions are truncated.
func FormatElapsed(seconds float64) string {
	if !isFinite(seconds) {
		return "-"
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	total := int64(seconds)
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, total/60%60, total%60)
}

// Finite returns a copy of the line without points that have a NaN or
// infinite coordinate.
func (l Line) Finite() Line {
	out := l
	out.X = make([]float64, 0, len(l.X))
	out.Y = make([]float64, 0, len(l.Y))
	for i := range min(len(l.X), len(l.Y)) {
		if !isFinite(l.X[i]) || !isFinite(l.Y[i]) {
			continue
		}
		out.X = append(out.X, l.X[i])
		out.Y = append(out.Y, l.Y[i])
	}
	return out
}

// Finite returns a copy of the figure whose lines hold only finite points.
func (f *Figure) Finite() *Figure {
	out := *f
	out.Lines = make([]Line, len(f.Lines))
	for i, l := range f.Lines {
		out.Lines[i] = l.Finite()
	}
	return &out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
