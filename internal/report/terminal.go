package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleName  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleValue = lipgloss.NewStyle().Bold(true)
	styleEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// TerminalSummary renders the milestone and progress tables for a terminal.
func TerminalSummary(data Data) string {
	var blocks []string
	for _, tableValues := range Tables(data) {
		if tableValues.Name != MilestonesTableName && tableValues.Name != ProgressTableName {
			continue
		}
		blocks = append(blocks, styleBox.Render(renderTerminalTable(tableValues)))
	}
	header := styleTitle.Render(data.Title)
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, blocks...)) + "\n"
}

func renderTerminalTable(tableValues TableValues) string {
	var lines []string
	lines = append(lines, styleTitle.Render(tableValues.Name))
	if msg, empty := tableValues.empty(); empty {
		lines = append(lines, styleEmpty.Render(msg))
		return strings.Join(lines, "\n")
	}
	if tableValues.HasRows {
		widths := make([]int, len(tableValues.Fields))
		for i, field := range tableValues.Fields {
			widths[i] = len(field.Name)
			for _, v := range field.Values {
				widths[i] = max(widths[i], len(v))
			}
		}
		align := func(field Field) lipgloss.Position {
			if field.AlignRight {
				return lipgloss.Right
			}
			return lipgloss.Left
		}
		var header []string
		for i, field := range tableValues.Fields {
			header = append(header, styleName.Width(widths[i]+2).PaddingRight(1).Align(align(field)).Render(field.Name))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, header...))
		for row := range tableValues.Fields[0].Values {
			var cells []string
			for i, field := range tableValues.Fields {
				cells = append(cells, styleValue.Width(widths[i]+2).PaddingRight(1).Align(align(field)).Render(field.Values[row]))
			}
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		}
		return strings.Join(lines, "\n")
	}
	nameWidth := 0
	for _, field := range tableValues.Fields {
		nameWidth = max(nameWidth, len(field.Name))
	}
	for _, field := range tableValues.Fields {
		if len(field.Values) == 0 || field.Values[0] == "" {
			continue
		}
		lines = append(lines, styleName.Width(nameWidth+2).Render(field.Name)+styleValue.Render(field.Values[0]))
	}
	return strings.Join(lines, "\n")
}
