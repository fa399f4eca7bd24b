// Package report provides functions to generate reports in various formats such as txt, json, html, png, xlsx.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"sxprof/internal/chart"
	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
	"sxprof/internal/util"
)

const (
	FormatHtml = "html"
	FormatPng  = "png"
	FormatXlsx = "xlsx"
	FormatJson = "json"
	FormatTxt  = "txt"
	FormatAll  = "all"
)

const NoDataFound = "No data found."

var FormatOptions = []string{FormatHtml, FormatPng, FormatXlsx, FormatJson, FormatTxt}

// Data is everything a report is built from.
type Data struct {
	Title   string
	Summary *eventlog.Summary
	Samples *pidstat.Samples
	Figure  *chart.Figure
	NCores  float64
}

// Create generates a report in the specified format.
// If the format is not supported, the function panics with an error message.
//
// Parameters:
// - format: The desired format of the report (txt, json, html, png, xlsx).
// - data: The parsed log summary, resource samples and composed figure.
//
// Returns:
// - out: The generated report as a byte slice.
// - err: An error, if any occurred during report generation.
func Create(format string, data Data) (out []byte, err error) {
	if data.Summary == nil {
		data.Summary = &eventlog.Summary{}
	}
	if data.Figure == nil && (format == FormatHtml || format == FormatPng || format == FormatXlsx) {
		return nil, fmt.Errorf("%s report requires a figure", format)
	}
	switch format {
	case FormatTxt:
		return createTextReport(data)
	case FormatJson:
		return createJsonReport(data)
	case FormatHtml:
		return createHtmlReport(data)
	case FormatPng:
		return createPngReport(data.Figure)
	case FormatXlsx:
		return createXlsxReport(data)
	}
	panic(fmt.Sprintf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format))
}

// Formats expands "all" and rejects unknown names.
func Formats(requested []string) ([]string, error) {
	var formats []string
	for _, format := range requested {
		format = strings.ToLower(strings.TrimSpace(format))
		if format == FormatAll {
			return FormatOptions, nil
		}
		found := false
		for _, option := range FormatOptions {
			if format == option {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("format options are: %s", strings.Join(FormatOptions, ", ")+", "+FormatAll)
		}
		formats = util.UniqueAppend(formats, format)
	}
	return formats, nil
}
