package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"html"
	htmltemplate "html/template"
	"log/slog"
	"math"
	"strconv"
	"strings"
	texttemplate "text/template" // nosemgrep

	"sxprof/internal/chart"
)

func getHtmlReportBegin(title string) string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
`)
	sb.WriteString("<head>\n")
	sb.WriteString(fmt.Sprintf(`    <meta charset="UTF-8">
    <title>%s</title>
    <meta name="viewport" content="width=device-width, initial-scale=1">
`, html.EscapeString(title)))
	// link the style sheets and javascript
	sb.WriteString(`
	<link rel="stylesheet" href="https://unpkg.com/normalize.css@8.0.1/normalize.css" integrity="sha384-M86HUGbBFILBBZ9ykMAbT3nVb0+2C7yZlF8X2CiKNpDOQjKroMJqIeGZ/Le8N2Qp" crossorigin="anonymous" referrerpolicy="no-referrer" />
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/purecss@3.0.0/build/pure-min.css" integrity="sha384-X38yfunGUhNzHpBaEBsWLO+A0HDYOQi8ufWDkZ0k9e0eXz/tH3II7uKZ9msv++Ls" crossorigin="anonymous" referrerpolicy="no-referrer" />
    <script src="https://unpkg.com/chart.js@3.7.1/dist/chart.min.js" integrity="sha384-7NrRHqlWUj2hJl3a/dZj/a1GxuQc56mJ3aYsEnydBYrY1jR+RSt6SBvK3sHfj+mJ" crossorigin="anonymous"  referrerpolicy="no-referrer"></script>
    <script src="https://unpkg.com/chartjs-plugin-annotation@1.4.0/dist/chartjs-plugin-annotation.min.js" crossorigin="anonymous" referrerpolicy="no-referrer"></script>
	`)
	sb.WriteString(`
	<style>
        .content {
            padding: 0 2em;
            line-height: 1.6em;
        }
        .content h2 {
            font-weight: 300;
            color: #888;
        }
        .legend {
            list-style: none;
            padding: 0;
            columns: 2;
            max-width: 900px;
        }
        .legend .swatch {
            display: inline-block;
            width: 2em;
            height: 0;
            margin-right: 0.5em;
            vertical-align: middle;
            border-top-width: 3px;
        }
        .legend .swatch.fill {
            height: 0.8em;
            border-top-width: 0;
        }
		.field-description {
			position: relative;
			display: inline-block;
			cursor: help;
			margin-left: 4px;
		}
		.field-description .tooltip-icon {
			color: #fff;
			font-size: 12px;
			border-radius: 50%;
			width: 16px;
			height: 16px;
			text-align: center;
			line-height: 14px;
			background-color: #2196F3;
		}
		.field-description .tooltip-text {
			visibility: hidden;
			width: 250px;
			background-color: #333;
			color: #fff;
			text-align: left;
			border-radius: 6px;
			padding: 8px;
			position: absolute;
			z-index: 1000;
			bottom: 125%;
			left: 50%;
			margin-left: -125px;
			font-size: 12px;
		}
		.field-description:hover .tooltip-text {
			visibility: visible;
		}
	</style>
	`)
	sb.WriteString("</head>\n")
	return sb.String()
}

func createHtmlReport(data Data) (out []byte, err error) {
	var sb strings.Builder
	sb.WriteString(getHtmlReportBegin(data.Title))

	// body starts here
	sb.WriteString("<body>\n")
	sb.WriteString("<main class=\"content\">\n")
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(data.Title)))
	sb.WriteString(`
<noscript>
	<h3>JavaScript is disabled. The chart is not available.</h3>
</noscript>
`)
	figureHTML, err := RenderFigure(data.Figure, "resources")
	if err != nil {
		return nil, err
	}
	sb.WriteString(figureHTML)
	for _, tableValues := range Tables(data) {
		// print the table name
		sb.WriteString(fmt.Sprintf("<h2 id=\"%[1]s\">%[1]s</h2>\n", html.EscapeString(tableValues.Name)))
		// if there's no data in the table, print a message and continue
		if len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0 {
			msg := NoDataFound
			if tableValues.NoDataFound != "" {
				msg = tableValues.NoDataFound
			}
			sb.WriteString("<p>" + msg + "</p>\n")
			continue
		}
		sb.WriteString(DefaultHTMLTableRendererFunc(tableValues))
	}
	sb.WriteString("</main>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")
	out = []byte(sb.String())
	return
}

const datasetTemplate = `
{
	label: '{{js .Label}}',
	data: [{{.Data}}],
	yAxisID: '{{.Axis}}',
	backgroundColor: '{{.Color}}',
	borderColor: '{{.Color}}',
	borderWidth: 1,
	borderDash: [{{.Dash}}],
	pointRadius: 0,
	showLine: true,
	spanGaps: false
}
`

const annotationLineTemplate = `
{
	type: 'line',
	{{- if .Vertical}}
	xMin: {{.Value}},
	xMax: {{.Value}},
	{{- else}}
	yMin: {{.Value}},
	yMax: {{.Value}},
	{{- end}}
	yScaleID: '{{.Axis}}',
	borderColor: '{{.Color}}',
	borderWidth: 1,
	borderDash: [{{.Dash}}]
}
`

const annotationBoxTemplate = `
{
	type: 'box',
	xMin: {{.XMin}},
	xMax: {{.XMax}},
	yMin: {{.YMin}},
	yMax: {{.YMax}},
	yScaleID: 'y',
	backgroundColor: '{{.Color}}',
	borderWidth: 0,
	drawTime: 'beforeDatasetsDraw'
}
`

const timeChartTemplate = `<div class="chart-container" style="max-width: 900px">
<canvas id="{{.ID}}"></canvas>
</div>
<script>
function formatElapsed(s) {
	const total = Math.trunc(Math.abs(s));
	const pad = (n) => String(n).padStart(2, '0');
	return (s < 0 ? '-' : '') + Math.trunc(total / 3600) + ':' + pad(Math.trunc(total / 60) % 60) + ':' + pad(total % 60);
}
new Chart(document.getElementById('{{.ID}}'), {
    type: 'scatter',
    data: {
        datasets: [{{.Datasets}}]
    },
    options: {
        aspectRatio: {{.AspectRatio}},
        scales: {
            x: {
                type: 'linear',
                min: {{.XMin}},
                max: {{.XMax}},
                title: {
                    text: "{{js .XaxisText}}",
                    display: true
                },
                ticks: {
                    callback: formatElapsed
                }
            },
            y: {
                position: 'left',
                min: {{.YMin}},
                max: {{.YMax}},
                title: {
                    text: "{{js .YaxisText}}",
                    display: true
                }
            }{{if .HasY1}},
            y1: {
                position: 'right',
                min: {{.Y1Min}},
                max: {{.Y1Max}},
                grid: {
                    drawOnChartArea: false
                },
                title: {
                    text: "{{js .Y1axisText}}",
                    display: true
                }
            }{{end}}
        },
        plugins: {
            title: {
                text: "{{js .TitleText}}",
                display: {{.DisplayTitle}},
                font: {
                    size: 18
                }
            },
            tooltip: {
                callbacks: {
                    label: function(ctx) {
                        return ctx.dataset.label + " (" + formatElapsed(ctx.parsed.x) + ", " + ctx.parsed.y + ")";
                    }
                }
            },
            legend: {
                display: false
            },
            annotation: {
                annotations: [{{.Annotations}}]
            }
        }
    }
});
</script>
`

type ChartTemplateStruct struct {
	ID           string
	Datasets     string
	Annotations  string
	XaxisText    string
	YaxisText    string
	Y1axisText   string
	TitleText    string
	DisplayTitle string
	AspectRatio  string
	XMin         string
	XMax         string
	YMin         string
	YMax         string
	HasY1        bool
	Y1Min        string
	Y1Max        string
}

var (
	datasetTmpl        = texttemplate.Must(texttemplate.New("datasetTemplate").Parse(datasetTemplate))
	annotationLineTmpl = texttemplate.Must(texttemplate.New("annotationLineTemplate").Parse(annotationLineTemplate))
	annotationBoxTmpl  = texttemplate.Must(texttemplate.New("annotationBoxTemplate").Parse(annotationBoxTemplate))
	timeChartTmpl      = texttemplate.Must(texttemplate.New("timeChartTemplate").Parse(timeChartTemplate))
)

// RenderFigure generates the chart.js canvas, script and combined legend for a figure.
func RenderFigure(fig *chart.Figure, id string) (string, error) {
	var datasets, annotations []string
	for _, line := range fig.Lines {
		out, err := execute(datasetTmpl, struct {
			Label string
			Data  string
			Axis  string
			Color string
			Dash  string
		}{
			Label: line.Label,
			Data:  formatPoints(line.X, line.Y),
			Axis:  scaleID(line.Axis),
			Color: rgba(line.Color, line.Alpha),
			Dash:  dashPattern(line.Style),
		})
		if err != nil {
			return "", err
		}
		datasets = append(datasets, out)
	}
	for _, band := range fig.Bands {
		bottom, top := fig.BandY(band)
		out, err := execute(annotationBoxTmpl, struct {
			XMin, XMax, YMin, YMax string
			Color                  string
		}{
			XMin:  jsNumber(band.Start),
			XMax:  jsNumber(band.End),
			YMin:  jsNumber(bottom),
			YMax:  jsNumber(top),
			Color: rgba(band.Color, band.Alpha),
		})
		if err != nil {
			return "", err
		}
		annotations = append(annotations, out)
	}
	type annotationLine struct {
		Vertical bool
		Value    string
		Axis     string
		Color    string
		Dash     string
	}
	for _, h := range fig.HLines {
		out, err := execute(annotationLineTmpl, annotationLine{Value: jsNumber(h.Y), Axis: scaleID(h.Axis), Color: h.Color, Dash: dashPattern(h.Style)})
		if err != nil {
			return "", err
		}
		annotations = append(annotations, out)
	}
	for _, v := range fig.VLines {
		out, err := execute(annotationLineTmpl, annotationLine{Vertical: true, Value: jsNumber(v.X), Axis: "y", Color: v.Color, Dash: dashPattern(v.Style)})
		if err != nil {
			return "", err
		}
		annotations = append(annotations, out)
	}
	config := ChartTemplateStruct{
		ID:           id,
		Datasets:     strings.Join(datasets, ","),
		Annotations:  strings.Join(annotations, ","),
		XaxisText:    fig.XLabel,
		YaxisText:    fig.Left.Label,
		TitleText:    fig.Title,
		DisplayTitle: strconv.FormatBool(fig.Title != ""),
		AspectRatio:  "2",
		XMin:         jsNumber(fig.XMin),
		XMax:         jsNumber(fig.XMax),
		YMin:         jsNumber(fig.Left.Min),
		YMax:         jsNumber(fig.Left.Max),
	}
	if fig.Right != nil {
		config.HasY1 = true
		config.Y1axisText = fig.Right.Label
		config.Y1Min = jsNumber(fig.Right.Min)
		config.Y1Max = jsNumber(fig.Right.Max)
	}
	out, err := execute(timeChartTmpl, config)
	if err != nil {
		return "", err
	}
	return out + "\n" + renderLegend(fig.Legend), nil
}

func execute(tmpl *texttemplate.Template, data any) (string, error) {
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		slog.Error("error executing template", slog.String("template", tmpl.Name()), slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.String(), nil
}

// renderLegend lists every legend entry of both axes below the chart.
func renderLegend(entries []chart.LegendEntry) string {
	var sb strings.Builder
	sb.WriteString(`<ul class="legend">`)
	for _, e := range entries {
		class := "swatch"
		style := fmt.Sprintf("border-top-color: %s; border-top-style: %s", e.Color, cssBorderStyle(e.Style))
		if e.Fill {
			class += " fill"
			style = "background-color: " + e.Color
		}
		sb.WriteString(fmt.Sprintf(`<li><span class="%s" style="%s"></span>%s</li>`, class, style, htmltemplate.HTMLEscapeString(e.Label)))
	}
	sb.WriteString(`</ul>`)
	sb.WriteString("\n")
	return sb.String()
}

func formatPoints(xs, ys []float64) string {
	points := make([]string, 0, len(xs))
	for i := range min(len(xs), len(ys)) {
		points = append(points, fmt.Sprintf("{x: %s, y: %s}", jsNumber(xs[i]), jsNumber(ys[i])))
	}
	return strings.Join(points, ",")
}

// jsNumber leaves gaps in the line for samples that are NaN.
func jsNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "null"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func scaleID(side chart.AxisSide) string {
	if side == chart.AxisRight {
		return "y1"
	}
	return "y"
}

func dashPattern(style chart.LineStyle) string {
	switch style {
	case chart.StyleDashed:
		return "6, 4"
	case chart.StyleDotted:
		return "1, 3"
	case chart.StyleDashDot:
		return "6, 3, 1, 3"
	}
	return ""
}

func cssBorderStyle(style chart.LineStyle) string {
	switch style {
	case chart.StyleDashed, chart.StyleDashDot:
		return "dashed"
	case chart.StyleDotted:
		return "dotted"
	}
	return "solid"
}

// rgba converts "#rrggbb" and an opacity into a CSS color.
func rgba(hex string, alpha float64) string {
	value, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || alpha <= 0 || alpha >= 1 {
		return hex
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", value>>16&0xff, value>>8&0xff, value&0xff, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// CreateFieldNameWithDescription creates HTML for a field name with optional description tooltip
func CreateFieldNameWithDescription(fieldName, description string) string {
	if description == "" {
		return htmltemplate.HTMLEscapeString(fieldName)
	}
	return htmltemplate.HTMLEscapeString(fieldName) + `<span class="field-description"><span class="tooltip-icon">?</span><span class="tooltip-text">` + htmltemplate.HTMLEscapeString(description) + `</span></span>`
}

func RenderHTMLTable(tableHeaders []string, tableValues [][]string, class string, valuesStyle [][]string) string {
	return renderHTMLTableWithDescriptions(tableHeaders, nil, tableValues, class, valuesStyle)
}

// renderHTMLTableWithDescriptions renders an HTML table with optional header descriptions
func renderHTMLTableWithDescriptions(tableHeaders []string, headerDescriptions []string, tableValues [][]string, class string, valuesStyle [][]string) string {
	var sb strings.Builder
	sb.WriteString(`<table class="` + class + `">`)
	if len(tableHeaders) > 0 {
		sb.WriteString(`<thead>`)
		sb.WriteString(`<tr>`)
		for i, label := range tableHeaders {
			var description string
			if headerDescriptions != nil && i < len(headerDescriptions) {
				description = headerDescriptions[i]
			}
			sb.WriteString(`<th>` + CreateFieldNameWithDescription(label, description) + `</th>`)
		}
		sb.WriteString(`</tr>`)
		sb.WriteString(`</thead>`)
	}
	sb.WriteString(`<tbody>`)
	for rowIdx, rowValues := range tableValues {
		sb.WriteString(`<tr>`)
		for colIdx, value := range rowValues {
			var style string
			if len(valuesStyle) > rowIdx && len(valuesStyle[rowIdx]) > colIdx {
				style = ` style="` + valuesStyle[rowIdx][colIdx] + `"`
			}
			sb.WriteString(`<td` + style + `>` + value + `</td>`)
		}
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody>`)
	sb.WriteString(`</table>`)
	return sb.String()
}

func DefaultHTMLTableRendererFunc(tableValues TableValues) string {
	if tableValues.HasRows { // print the field names as column headings across the top of the table
		headers := []string{}
		headerDescriptions := []string{}
		for _, field := range tableValues.Fields {
			headers = append(headers, field.Name)
			headerDescriptions = append(headerDescriptions, field.Description)
		}
		values := [][]string{}
		for row := range tableValues.Fields[0].Values {
			rowValues := []string{}
			for _, field := range tableValues.Fields {
				rowValues = append(rowValues, htmltemplate.HTMLEscapeString(field.Values[row]))
			}
			values = append(values, rowValues)
		}
		return renderHTMLTableWithDescriptions(headers, headerDescriptions, values, "pure-table pure-table-striped", [][]string{})
	}
	// print the field name followed by its value
	values := [][]string{}
	var tableValueStyles [][]string
	for _, field := range tableValues.Fields {
		rowValues := []string{}
		rowValues = append(rowValues, CreateFieldNameWithDescription(field.Name, field.Description))
		if len(field.Values) > 0 {
			rowValues = append(rowValues, htmltemplate.HTMLEscapeString(field.Values[0]))
		} else {
			rowValues = append(rowValues, "")
		}
		values = append(values, rowValues)
		tableValueStyles = append(tableValueStyles, []string{"font-weight:bold"})
	}
	return RenderHTMLTable([]string{}, values, "pure-table pure-table-striped", tableValueStyles)
}
