package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"sxprof/internal/chart"
	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
)

const (
	XlsxSummarySheetName = "Summary"
	XlsxSamplesSheetName = "Samples"
	XlsxEventsSheetName  = "Events"
	XlsxChartSheetName   = "Chart"
)

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

func renderXlsxTable(tableValues TableValues, f *excelize.File, sheetName string, row *int) {
	col := 1
	// print the table name
	tableNameStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	_ = f.SetCellValue(sheetName, cellName(col, *row), tableValues.Name)
	_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), tableNameStyle)
	*row++
	if len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0 {
		msg := NoDataFound
		if tableValues.NoDataFound != "" {
			msg = tableValues.NoDataFound
		}
		_ = f.SetCellValue(sheetName, cellName(col, *row), msg)
		*row += 2
		return
	}
	DefaultXlsxTableRendererFunc(tableValues, f, sheetName, row)
	*row++
}

func DefaultXlsxTableRendererFunc(tableValues TableValues, f *excelize.File, sheetName string, row *int) {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	alignLeft, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "left",
		},
	})
	if tableValues.HasRows {
		// print the field names as column headings across the top of the table
		col := 2
		for _, field := range tableValues.Fields {
			_ = f.SetCellValue(sheetName, cellName(col, *row), field.Name)
			_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), headerStyle)
			col++
		}
		col = 2
		*row++
		// print the rows
		tableRows := len(tableValues.Fields[0].Values)
		for tableRow := range tableRows {
			for _, field := range tableValues.Fields {
				value := getValueForCell(field.Values[tableRow])
				_ = f.SetCellValue(sheetName, cellName(col, *row), value)
				_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), alignLeft)
				col++
			}
			col = 2
			*row++
		}
	} else {
		// print the field name followed by its value
		col := 1
		for _, field := range tableValues.Fields {
			var fieldValue string
			if len(field.Values) > 0 {
				fieldValue = field.Values[0]
			}
			_ = f.SetCellValue(sheetName, cellName(col, *row), field.Name)
			col++
			value := getValueForCell(fieldValue)
			_ = f.SetCellValue(sheetName, cellName(col, *row), value)
			_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), alignLeft)
			col = 1
			*row++
		}
	}
}

func createXlsxReport(data Data) (out []byte, err error) {
	f := excelize.NewFile()
	defer f.Close()
	sheetName := XlsxSummarySheetName
	_ = f.SetSheetName("Sheet1", sheetName)
	_ = f.SetColWidth(sheetName, "A", "A", 25)
	_ = f.SetColWidth(sheetName, "B", "L", 25)
	row := 1
	for _, tableValues := range Tables(data) {
		renderXlsxTable(tableValues, f, sheetName, &row)
	}
	if data.Samples != nil {
		if err = renderXlsxSamples(f, data.Samples); err != nil {
			return
		}
	}
	if err = renderXlsxEvents(f, data.Summary); err != nil {
		return
	}
	if err = renderXlsxChart(f, data.Figure); err != nil {
		return
	}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	_, err = f.WriteTo(w)
	if err != nil {
		err = fmt.Errorf("failed to write xlsx report to buffer: %v", err)
		return
	}
	if err = w.Flush(); err != nil {
		err = fmt.Errorf("failed to flush xlsx report: %v", err)
		return
	}
	out = buf.Bytes()
	return
}

// renderXlsxSamples writes Time and every numeric sampled column, one row per sample.
func renderXlsxSamples(f *excelize.File, samples *pidstat.Samples) error {
	sheetName := XlsxSamplesSheetName
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to add %s sheet: %v", sheetName, err)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	columns := append([]string{pidstat.TimeColumn}, numericColumns(samples)...)
	for colIdx, column := range columns {
		values, err := samples.Float(column)
		if err != nil {
			return fmt.Errorf("failed to read %s: %v", column, err)
		}
		col := colIdx + 1
		_ = f.SetCellValue(sheetName, cellName(col, 1), column)
		_ = f.SetCellStyle(sheetName, cellName(col, 1), cellName(col, 1), headerStyle)
		for i, v := range values {
			if math.IsNaN(v) {
				continue
			}
			_ = f.SetCellValue(sheetName, cellName(col, i+2), v)
		}
	}
	return nil
}

// renderXlsxEvents lists every progress report from the log.
func renderXlsxEvents(f *excelize.File, summary *eventlog.Summary) error {
	sheetName := XlsxEventsSheetName
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to add %s sheet: %v", sheetName, err)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, header := range []string{"Counter", "Time", "Elapsed", "Value"} {
		_ = f.SetCellValue(sheetName, cellName(col+1, 1), header)
		_ = f.SetCellStyle(sheetName, cellName(col+1, 1), cellName(col+1, 1), headerStyle)
	}
	counters := []struct {
		name   string
		points []eventlog.Point
	}{
		{"Segmented", summary.Segmented},
		{"Detected", summary.Detected},
		{"Deblended", summary.Deblended},
		{"Measured", summary.Measured},
	}
	row := 2
	for _, c := range counters {
		for _, p := range c.points {
			_ = f.SetCellValue(sheetName, cellName(1, row), c.name)
			_ = f.SetCellValue(sheetName, cellName(2, row), p.Time)
			_ = f.SetCellValue(sheetName, cellName(3, row), chart.FormatElapsed(p.Time))
			_ = f.SetCellValue(sheetName, cellName(4, row), p.Value)
			row++
		}
	}
	return nil
}

// renderXlsxChart writes the left axis lines as x/y column pairs and adds a
// native scatter chart over them.
func renderXlsxChart(f *excelize.File, fig *chart.Figure) error {
	sheetName := XlsxChartSheetName
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to add %s sheet: %v", sheetName, err)
	}
	var series []excelize.ChartSeries
	col := 1
	for _, line := range fig.Finite().LinesOn(chart.AxisLeft) {
		if line.Unlisted || len(line.X) == 0 {
			continue
		}
		_ = f.SetCellValue(sheetName, cellName(col, 1), fig.XLabel)
		_ = f.SetCellValue(sheetName, cellName(col+1, 1), line.Label)
		for i := range line.X {
			_ = f.SetCellValue(sheetName, cellName(col, i+2), line.X[i])
			_ = f.SetCellValue(sheetName, cellName(col+1, i+2), line.Y[i])
		}
		last := len(line.X) + 1
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!%s", sheetName, absoluteCell(col+1, 1)),
			Categories: fmt.Sprintf("%s!%s:%s", sheetName, absoluteCell(col, 2), absoluteCell(col, last)),
			Values:     fmt.Sprintf("%s!%s:%s", sheetName, absoluteCell(col+1, 2), absoluteCell(col+1, last)),
		})
		col += 2
	}
	if len(series) == 0 {
		return nil
	}
	title := fig.Title
	if title == "" {
		title = fig.Left.Label
	}
	err := f.AddChart(sheetName, cellName(col+1, 2), &excelize.Chart{
		Type:      excelize.Scatter,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: title}},
		Dimension: excelize.ChartDimension{Width: 960, Height: 480},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: fig.XLabel + " (s)"}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: fig.Left.Label}}},
	})
	if err != nil {
		return fmt.Errorf("failed to add chart: %v", err)
	}
	return nil
}

// absoluteCell returns a reference like $B$2.
func absoluteCell(col, row int) string {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	return "$" + columnName + "$" + strconv.Itoa(row)
}

func getValueForCell(value string) (val any) {
	intValue, err := strconv.Atoi(value)
	if err == nil {
		val = intValue
		return
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err == nil {
		val = floatValue
		return
	}
	val = value
	return
}
