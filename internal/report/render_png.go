package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sxprof/internal/chart"
)

const (
	pngWidth  = 1280
	pngHeight = 720
)

func createPngReport(fig *chart.Figure) (out []byte, err error) {
	fig = fig.Finite()
	var series []gochart.Series
	for _, line := range fig.Lines {
		if len(line.X) == 0 {
			continue
		}
		s := gochart.ContinuousSeries{
			Name:    line.Label,
			XValues: line.X,
			YValues: line.Y,
			Style:   lineStyle(line.Color, line.Alpha, line.Style),
		}
		if line.Axis == chart.AxisRight {
			s.YAxis = gochart.YAxisSecondary
		}
		series = append(series, s)
	}
	// go-chart refuses to render without a series, keep the frame anyway
	if len(series) == 0 {
		series = append(series, gochart.ContinuousSeries{
			XValues: []float64{fig.XMin, fig.XMax},
			YValues: []float64{fig.Left.Min, fig.Left.Min},
			Style:   gochart.Style{StrokeWidth: 1, StrokeColor: drawing.ColorWhite.WithAlpha(0)},
		})
	}
	ch := gochart.Chart{
		Title:      fig.Title,
		Width:      pngWidth,
		Height:     pngHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           fig.XLabel,
			Range:          &gochart.ContinuousRange{Min: fig.XMin, Max: fig.XMax},
			ValueFormatter: elapsedFormatter,
		},
		YAxis: gochart.YAxis{
			Name:  fig.Left.Label,
			Range: &gochart.ContinuousRange{Min: fig.Left.Min, Max: fig.Left.Max},
		},
		Series: series,
	}
	if fig.Right != nil {
		ch.YAxisSecondary = gochart.YAxis{
			Name:  fig.Right.Label,
			Range: &gochart.ContinuousRange{Min: fig.Right.Min, Max: fig.Right.Max},
		}
	}
	ch.Elements = []gochart.Renderable{figureOverlay(fig), figureLegend(fig.Legend)}

	var buf bytes.Buffer
	if err = ch.Render(gochart.PNG, &buf); err != nil {
		err = fmt.Errorf("failed to render png chart: %v", err)
		return
	}
	out = buf.Bytes()
	return
}

func elapsedFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return chart.FormatElapsed(f)
	}
	return fmt.Sprintf("%v", v)
}

func color(hex string, alpha float64) drawing.Color {
	c := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
	if alpha > 0 && alpha < 1 {
		c = c.WithAlpha(uint8(alpha * 255))
	}
	return c
}

func dashArray(style chart.LineStyle) []float64 {
	switch style {
	case chart.StyleDashed:
		return []float64{6, 4}
	case chart.StyleDotted:
		return []float64{1, 3}
	case chart.StyleDashDot:
		return []float64{6, 3, 1, 3}
	}
	return nil
}

func lineStyle(hex string, alpha float64, style chart.LineStyle) gochart.Style {
	return gochart.Style{
		StrokeColor:     color(hex, alpha),
		StrokeWidth:     1.5,
		StrokeDashArray: dashArray(style),
	}
}

// plotArea maps data coordinates onto the canvas box of the chart.
type plotArea struct {
	box        gochart.Box
	xMin, xMax float64
	yMin, yMax float64
}

func (p plotArea) x(v float64) int {
	v = min(max(v, p.xMin), p.xMax)
	return p.box.Left + int((v-p.xMin)/(p.xMax-p.xMin)*float64(p.box.Width()))
}

func (p plotArea) y(v float64) int {
	v = min(max(v, p.yMin), p.yMax)
	return p.box.Bottom - int((v-p.yMin)/(p.yMax-p.yMin)*float64(p.box.Height()))
}

// figureOverlay draws the bands, the reference lines and the vertical markers
// that go-chart has no series type for.
func figureOverlay(fig *chart.Figure) gochart.Renderable {
	return func(r gochart.Renderer, canvasBox gochart.Box, defaults gochart.Style) {
		left := plotArea{box: canvasBox, xMin: fig.XMin, xMax: fig.XMax, yMin: fig.Left.Min, yMax: fig.Left.Max}
		right := left
		if fig.Right != nil {
			right.yMin, right.yMax = fig.Right.Min, fig.Right.Max
		}
		for _, band := range fig.Bands {
			bottom, top := fig.BandY(band)
			r.SetFillColor(color(band.Color, band.Alpha))
			r.SetStrokeWidth(0)
			r.MoveTo(left.x(band.Start), left.y(bottom))
			r.LineTo(left.x(band.End), left.y(bottom))
			r.LineTo(left.x(band.End), left.y(top))
			r.LineTo(left.x(band.Start), left.y(top))
			r.Close()
			r.Fill()
		}
		for _, h := range fig.HLines {
			area := left
			if h.Axis == chart.AxisRight {
				area = right
			}
			strokeLine(r, h.Color, h.Style, canvasBox.Left, area.y(h.Y), canvasBox.Right, area.y(h.Y))
		}
		for _, v := range fig.VLines {
			strokeLine(r, v.Color, v.Style, left.x(v.X), canvasBox.Bottom, left.x(v.X), canvasBox.Top)
		}
	}
}

func strokeLine(r gochart.Renderer, hex string, style chart.LineStyle, x0, y0, x1, y1 int) {
	r.SetStrokeColor(color(hex, 1))
	r.SetStrokeWidth(1)
	r.SetStrokeDashArray(dashArray(style))
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.Stroke()
	r.SetStrokeDashArray(nil)
}

// figureLegend draws the combined legend of both axes in the top left corner
// of the plot area.
func figureLegend(entries []chart.LegendEntry) gochart.Renderable {
	return func(r gochart.Renderer, canvasBox gochart.Box, defaults gochart.Style) {
		if len(entries) == 0 {
			return
		}
		font := defaults.Font
		if font == nil {
			var err error
			if font, err = gochart.GetDefaultFont(); err != nil {
				return
			}
		}
		r.SetFont(font)
		r.SetFontSize(9)
		r.SetFontColor(drawing.ColorBlack)

		const (
			padding  = 6
			swatch   = 20
			rowSpace = 4
		)
		textWidth, textHeight := 0, 0
		for _, e := range entries {
			box := r.MeasureText(e.Label)
			textWidth = max(textWidth, box.Width())
			textHeight = max(textHeight, box.Height())
		}
		rowHeight := textHeight + rowSpace
		legend := gochart.Box{
			Top:    canvasBox.Top + padding,
			Left:   canvasBox.Left + padding,
			Right:  canvasBox.Left + padding + 3*padding + swatch + textWidth,
			Bottom: canvasBox.Top + padding + 2*padding + len(entries)*rowHeight,
		}
		r.SetFillColor(drawing.ColorWhite.WithAlpha(220))
		r.SetStrokeColor(drawing.ColorFromHex("cccccc"))
		r.SetStrokeWidth(1)
		r.MoveTo(legend.Left, legend.Top)
		r.LineTo(legend.Right, legend.Top)
		r.LineTo(legend.Right, legend.Bottom)
		r.LineTo(legend.Left, legend.Bottom)
		r.Close()
		r.FillStroke()

		for i, e := range entries {
			baseline := legend.Top + padding + (i+1)*rowHeight - rowSpace
			middle := baseline - textHeight/2
			x := legend.Left + padding
			if e.Fill {
				r.SetFillColor(color(e.Color, 1))
				r.SetStrokeWidth(0)
				r.MoveTo(x, middle-textHeight/2)
				r.LineTo(x+swatch, middle-textHeight/2)
				r.LineTo(x+swatch, middle+textHeight/2)
				r.LineTo(x, middle+textHeight/2)
				r.Close()
				r.Fill()
			} else {
				strokeLine(r, e.Color, e.Style, x, middle, x+swatch, middle)
			}
			r.SetFontColor(drawing.ColorBlack)
			r.Text(e.Label, x+swatch+padding, baseline)
		}
	}
}
