package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"
)

const textColumnGap = "   "

// createTextReport writes the title and then every table, each name underlined.
func createTextReport(data Data) (out []byte, err error) {
	var sb strings.Builder
	if data.Title != "" {
		fmt.Fprintf(&sb, "%s\n\n", data.Title)
	}
	for _, tableValues := range Tables(data) {
		fmt.Fprintf(&sb, "%s\n%s\n", tableValues.Name, strings.Repeat("=", len(tableValues.Name)))
		if msg, empty := tableValues.empty(); empty {
			fmt.Fprintf(&sb, "%s\n\n", msg)
			continue
		}
		if tableValues.HasRows {
			writeTextRows(&sb, tableValues)
		} else {
			writeTextFields(&sb, tableValues)
		}
		sb.WriteString("\n")
	}
	out = []byte(sb.String())
	return
}

// writeTextRows lays the fields out as columns. Fields marked AlignRight are
// padded on the left so counts and elapsed times line up.
func writeTextRows(sb *strings.Builder, tableValues TableValues) {
	widths := make([]int, len(tableValues.Fields))
	for i, field := range tableValues.Fields {
		widths[i] = len(field.Name)
		for _, v := range field.Values {
			widths[i] = max(widths[i], len(v))
		}
	}
	writeLine := func(cell func(i int, field Field) string) {
		cells := make([]string, len(tableValues.Fields))
		for i, field := range tableValues.Fields {
			if field.AlignRight {
				cells[i] = fmt.Sprintf("%*s", widths[i], cell(i, field))
			} else {
				cells[i] = fmt.Sprintf("%-*s", widths[i], cell(i, field))
			}
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, textColumnGap), " ") + "\n")
	}
	writeLine(func(_ int, field Field) string { return field.Name })
	writeLine(func(i int, _ Field) string { return strings.Repeat("-", widths[i]) })
	for row := range tableValues.Fields[0].Values {
		writeLine(func(_ int, field Field) string {
			if row < len(field.Values) {
				return field.Values[row]
			}
			return ""
		})
	}
}

// writeTextFields writes one "Name: value" line per field with the values aligned.
func writeTextFields(sb *strings.Builder, tableValues TableValues) {
	nameWidth := 0
	for _, field := range tableValues.Fields {
		nameWidth = max(nameWidth, len(field.Name)+1)
	}
	for _, field := range tableValues.Fields {
		var value string
		if len(field.Values) > 0 {
			value = field.Values[0]
		}
		sb.WriteString(strings.TrimRight(fmt.Sprintf("%-*s %s", nameWidth, field.Name+":", value), " ") + "\n")
	}
}
