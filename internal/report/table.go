package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sxprof/internal/chart"
	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
)

// Field represents the values for a field in a table
type Field struct {
	Name        string
	Description string // optional description of the field
	Values      []string
	AlignRight  bool // numbers line up on the right in text and terminal tables
}

// TableValues is a named set of fields rendered the same way by every format
type TableValues struct {
	Name        string
	HasRows     bool   // table is meant to be displayed in row form, i.e., a field may have multiple values
	NoDataFound string // message to display when no data is found
	Fields      []Field
}

// empty returns the message to show in place of a table without values.
func (tv TableValues) empty() (string, bool) {
	if len(tv.Fields) > 0 && len(tv.Fields[0].Values) > 0 {
		return "", false
	}
	if tv.NoDataFound != "" {
		return tv.NoDataFound, true
	}
	return NoDataFound, true
}

const (
	MilestonesTableName = "Milestones"
	ProgressTableName   = "Progress"
	ResourcesTableName  = "Resources"
	LogLevelsTableName  = "Log Levels"
)

// printer adds thousands separators, e.g., 1,234,567
var printer = message.NewPrinter(language.English)

func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatFloat(v float64) string {
	return printer.Sprintf("%.2f", v)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return formatCount(*v)
}

func formatOptionalElapsed(v *float64) string {
	if v == nil {
		return ""
	}
	return chart.FormatElapsed(*v)
}

func formatInterval(i eventlog.Interval) string {
	if i.Start == nil && i.End == nil {
		return ""
	}
	return fmt.Sprintf("%s - %s", formatOptionalElapsed(i.Start), formatOptionalElapsed(i.End))
}

func formatIntervalDuration(i eventlog.Interval) string {
	d, ok := i.Duration()
	if !ok {
		return ""
	}
	return chart.FormatElapsed(d)
}

// Tables builds every report table from the parsed inputs.
func Tables(data Data) []TableValues {
	return []TableValues{
		milestonesTable(data),
		progressTable(data.Summary),
		resourcesTable(data.Samples),
		logLevelsTable(data.Summary),
	}
}

func milestonesTable(data Data) TableValues {
	s := data.Summary
	background := make([]string, len(s.Background))
	for i, ts := range s.Background {
		background[i] = chart.FormatElapsed(ts)
	}
	cores := ""
	if data.NCores > 0 {
		cores = strconv.FormatFloat(data.NCores, 'f', -1, 64)
	}
	return TableValues{
		Name: MilestonesTableName,
		Fields: []Field{
			{Name: "Thread Count", Values: []string{formatOptionalInt(s.ThreadCount)}},
			{Name: "Cores", Description: "core count used to scale %CPU", Values: []string{cores}},
			{Name: "Tile Memory Limit", Description: "MiB", Values: []string{formatOptionalInt(s.TileMemoryLimit)}},
			{Name: "Background Done", Values: []string{strings.Join(background, ", ")}},
			{Name: "Segmentation", Values: []string{formatInterval(s.Segmentation)}},
			{Name: "Segmentation Duration", Values: []string{formatIntervalDuration(s.Segmentation)}},
			{Name: "Deblending", Values: []string{formatInterval(s.Deblending)}},
			{Name: "Deblending Duration", Values: []string{formatIntervalDuration(s.Deblending)}},
			{Name: "Measurement", Values: []string{formatInterval(s.Measurement)}},
			{Name: "Measurement Duration", Values: []string{formatIntervalDuration(s.Measurement)}},
			{Name: "Duration", Description: "time of the last log message not matching a milestone", Values: []string{formatOptionalElapsed(s.Duration)}},
			{Name: "Log Lines", Values: []string{formatCount(s.Lines)}},
			{Name: "Skipped Lines", Values: []string{formatCount(s.Skipped)}},
		},
	}
}

func progressTable(s *eventlog.Summary) TableValues {
	tv := TableValues{
		Name:        ProgressTableName,
		HasRows:     true,
		NoDataFound: "No progress reported in the log.",
		Fields: []Field{
			{Name: "Counter"},
			{Name: "Reports", AlignRight: true},
			{Name: "Last Value", AlignRight: true},
			{Name: "Last Report", AlignRight: true},
		},
	}
	counters := []struct {
		name   string
		points []eventlog.Point
	}{
		{"Segmented", s.Segmented},
		{"Detected", s.Detected},
		{"Deblended", s.Deblended},
		{"Measured", s.Measured},
	}
	for _, c := range counters {
		if len(c.points) == 0 {
			continue
		}
		last := c.points[len(c.points)-1]
		lastValue := formatCount(last.Value)
		if c.name == "Segmented" && s.SegmentationTotal > 0 {
			lastValue += " of " + formatCount(s.SegmentationTotal)
		}
		tv.Fields[0].Values = append(tv.Fields[0].Values, c.name)
		tv.Fields[1].Values = append(tv.Fields[1].Values, formatCount(len(c.points)))
		tv.Fields[2].Values = append(tv.Fields[2].Values, lastValue)
		tv.Fields[3].Values = append(tv.Fields[3].Values, chart.FormatElapsed(last.Time))
	}
	return tv
}

func resourcesTable(samples *pidstat.Samples) TableValues {
	tv := TableValues{
		Name:        ResourcesTableName,
		HasRows:     true,
		NoDataFound: "No resource samples.",
		Fields: []Field{
			{Name: "Column"},
			{Name: "Min", AlignRight: true},
			{Name: "Mean", AlignRight: true},
			{Name: "Max", AlignRight: true},
		},
	}
	if samples == nil {
		return tv
	}
	for _, column := range numericColumns(samples) {
		stats, err := samples.Stats(column)
		if err != nil {
			continue
		}
		tv.Fields[0].Values = append(tv.Fields[0].Values, column)
		tv.Fields[1].Values = append(tv.Fields[1].Values, formatFloat(stats.Min))
		tv.Fields[2].Values = append(tv.Fields[2].Values, formatFloat(stats.Mean))
		tv.Fields[3].Values = append(tv.Fields[3].Values, formatFloat(stats.Max))
	}
	return tv
}

func logLevelsTable(s *eventlog.Summary) TableValues {
	tv := TableValues{
		Name:    LogLevelsTableName,
		HasRows: true,
		Fields: []Field{
			{Name: "Level"},
			{Name: "Lines", AlignRight: true},
		},
	}
	levels := make([]string, 0, len(s.Levels))
	for level := range s.Levels {
		levels = append(levels, level)
	}
	slices.Sort(levels)
	for _, level := range levels {
		tv.Fields[0].Values = append(tv.Fields[0].Values, level)
		tv.Fields[1].Values = append(tv.Fields[1].Values, formatCount(s.Levels[level]))
	}
	return tv
}

// numericColumns lists sampled columns other than Time that hold numbers.
func numericColumns(samples *pidstat.Samples) []string {
	var columns []string
	for _, column := range samples.Columns() {
		if column == pidstat.TimeColumn {
			continue
		}
		if _, err := samples.Float(column); err != nil {
			continue
		}
		columns = append(columns, column)
	}
	return columns
}
