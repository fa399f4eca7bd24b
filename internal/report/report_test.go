package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sxprof/internal/chart"
	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
)

const testLog = `2020-06-10T15:22:05CEST SourceXtractor  INFO : Starting SourceXtractor++
2020-06-10T15:22:05CEST SourceXtractor  INFO : thread-count = 4
2020-06-10T15:22:05CEST SourceXtractor  INFO : tile-memory-limit = 512
2020-06-10T15:22:06CEST SourceXtractor  INFO : Background for image measurement.fits done
2020-06-10T15:22:07CEST SourceXtractor  INFO : Segmentation 10 of 100 lines
2020-06-10T15:22:08CEST SourceXtractor  INFO : Detected 12345 sources
2020-06-10T15:22:09CEST SourceXtractor  INFO : Segmentation 100 of 100 lines
2020-06-10T15:22:10CEST SourceXtractor  INFO : Deblended 5000
2020-06-10T15:22:12CEST SourceXtractor  INFO : Deblended 12345
2020-06-10T15:22:13CEST SourceXtractor  INFO : Measured 100 sources
2020-06-10T15:22:16CEST SourceXtractor  INFO : Measured 12345 sources
2020-06-10T15:22:17CEST SourceXtractor  WARN : Done
`

// the second header adds RSS, so the first two rows are padded with NaN
const testPidstat = `# Time %CPU kB_rd/s Command
1591795325 100 1024 sourcextractor++
1591795330 200 2048 sourcextractor++
# Time %CPU kB_rd/s RSS Command
1591795335 400 0 524288 sourcextractor++
1591795340 50 0 262144 sourcextractor++
`

func testData(t *testing.T) Data {
	t.Helper()
	summary, err := eventlog.ReadFrom(strings.NewReader(testLog), nil)
	require.NoError(t, err)
	samples, err := pidstat.ReadFrom(strings.NewReader(testPidstat), pidstat.Options{NCores: 8})
	require.NoError(t, err)
	spec, err := chart.NewPlotSpec("cpu", chart.DefaultRight(samples), "sourcextractor.log", 8)
	require.NoError(t, err)
	fig, err := chart.Compose(samples, summary, spec)
	require.NoError(t, err)
	return Data{Title: "sourcextractor.log", Summary: summary, Samples: samples, Figure: fig, NCores: 8}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		want      []string
		wantErr   bool
	}{
		{"single", []string{"html"}, []string{FormatHtml}, false},
		{"several", []string{"txt", " JSON "}, []string{FormatTxt, FormatJson}, false},
		{"repeated", []string{"png", "txt", "png"}, []string{FormatPng, FormatTxt}, false},
		{"all", []string{"txt", "all"}, FormatOptions, false},
		{"unknown", []string{"pdf"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Formats(tt.requested)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateUnknownFormatPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = Create("pdf", testData(t)) })
}

func TestCreateRequiresFigure(t *testing.T) {
	data := testData(t)
	data.Figure = nil
	_, err := Create(FormatPng, data)
	assert.Error(t, err)
	_, err = Create(FormatTxt, data)
	assert.NoError(t, err)
}

func TestTextReport(t *testing.T) {
	out, err := Create(FormatTxt, testData(t))
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Milestones\n==========\n")
	assert.Regexp(t, `Thread Count:\s+4\n`, text)
	assert.Regexp(t, `Segmentation Duration: 0:00:02\n`, text)
	assert.Regexp(t, `Deblending Duration:\s+0:00:02\n`, text)
	assert.Regexp(t, `Measurement Duration:\s+0:00:03\n`, text)
	assert.Regexp(t, `Duration:\s+0:00:12\n`, text)
	// thousands separators
	assert.Contains(t, text, "12,345")
	assert.Contains(t, text, "100 of 100")
	assert.Contains(t, text, "Resources\n=========\n")
	assert.Contains(t, text, "kB_rd/s")
	assert.NotContains(t, text, "Command")
}

func TestTextReportAlignsNumbersRight(t *testing.T) {
	out, err := Create(FormatTxt, testData(t))
	require.NoError(t, err)
	text := string(out)
	assert.True(t, strings.HasPrefix(text, "sourcextractor.log\n\n"))

	var header, detected string
	for line := range strings.SplitSeq(text, "\n") {
		switch {
		case strings.HasPrefix(line, "Counter"):
			header = line
		case strings.HasPrefix(line, "Detected "):
			detected = line
		}
	}
	require.NotEmpty(t, header)
	require.NotEmpty(t, detected)
	assert.Regexp(t, `^Detected\s+1\s+12,345\s+0:00:03$`, detected)
	// right aligned columns end where their headings end
	assert.Equal(t, strings.Index(header, "Reports")+len("Reports"), strings.Index(detected, " 1 ")+2)
	assert.Equal(t, len(header), len(detected))
}

func TestTextReportEmptyTable(t *testing.T) {
	data := testData(t)
	data.Samples = nil
	out, err := Create(FormatTxt, data)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Resources\n=========\nNo resource samples.\n")
}

func TestJsonReport(t *testing.T) {
	out, err := Create(FormatJson, testData(t))
	require.NoError(t, err)
	var decoded struct {
		Title   string `json:"title"`
		Summary struct {
			ThreadCount int `json:"thread_count"`
		} `json:"summary"`
		Figure struct {
			Left struct {
				Series string `json:"series"`
			} `json:"left"`
			Lines []struct {
				Label string    `json:"label"`
				Y     []float64 `json:"y"`
			} `json:"lines"`
		} `json:"figure"`
		Tables map[string][]map[string]string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "sourcextractor.log", decoded.Title)
	assert.Equal(t, 4, decoded.Summary.ThreadCount)
	assert.Equal(t, "cpu", decoded.Figure.Left.Series)
	for _, line := range decoded.Figure.Lines {
		if line.Label == "RSS" {
			// NaN padded samples are dropped
			assert.Equal(t, []float64{512, 256}, line.Y)
		}
	}
	require.Len(t, decoded.Tables[MilestonesTableName], 1)
	assert.Equal(t, "4", decoded.Tables[MilestonesTableName][0]["Thread Count"])
}

func TestHtmlReport(t *testing.T) {
	data := testData(t)
	data.Title = "<b>run</b>"
	out, err := Create(FormatHtml, data)
	require.NoError(t, err)
	page := string(out)
	assert.Contains(t, page, "chartjs-plugin-annotation")
	assert.Contains(t, page, "new Chart(document.getElementById('resources')")
	assert.Contains(t, page, "y1: {")
	assert.Contains(t, page, "yAxisID: 'y1'")
	assert.Contains(t, page, "type: 'box'")
	assert.Contains(t, page, "{x: 0, y: null}")
	assert.Contains(t, page, "Segmentation (0:00:02)")
	assert.Contains(t, page, "<h2 id=\"Progress\">Progress</h2>")
	assert.Contains(t, page, "<h1>&lt;b&gt;run&lt;/b&gt;</h1>")
	assert.NotContains(t, page, "<b>run</b>")
}

func TestPngReport(t *testing.T) {
	out, err := Create(FormatPng, testData(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\x89PNG\r\n\x1a\n")))
}

func TestPngReportWithoutLines(t *testing.T) {
	spec, err := chart.NewPlotSpec("sources", "", "", 0)
	require.NoError(t, err)
	fig, err := chart.Compose(nil, &eventlog.Summary{}, spec)
	require.NoError(t, err)
	out, err := Create(FormatPng, Data{Figure: fig})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestXlsxReport(t *testing.T) {
	out, err := Create(FormatXlsx, testData(t))
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{XlsxSummarySheetName, XlsxSamplesSheetName, XlsxEventsSheetName, XlsxChartSheetName}, f.GetSheetList())

	value, err := f.GetCellValue(XlsxSummarySheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, MilestonesTableName, value)
	value, err = f.GetCellValue(XlsxSummarySheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "4", value)

	header, err := f.GetRows(XlsxSamplesSheetName)
	require.NoError(t, err)
	require.Len(t, header, 5)
	assert.Equal(t, []string{"Time", "%CPU", "kB_rd/s", "RSS", "CPU"}, header[0])

	events, err := f.GetRows(XlsxEventsSheetName)
	require.NoError(t, err)
	// header, two segmentation, one detected, two deblended, two measured
	assert.Len(t, events, 8)
	assert.Equal(t, []string{"Segmented", "2", "0:00:02", "10"}, events[1])

	value, err = f.GetCellValue(XlsxChartSheetName, "B1")
	require.NoError(t, err)
	assert.Equal(t, "CPU", value)
}

func TestTerminalSummary(t *testing.T) {
	out := TerminalSummary(testData(t))
	assert.Contains(t, out, "sourcextractor.log")
	assert.Contains(t, out, "Milestones")
	assert.Contains(t, out, "Thread Count")
	assert.Contains(t, out, "Progress")
	assert.NotContains(t, out, "Resources")
}

func TestRgba(t *testing.T) {
	assert.Equal(t, "rgba(255, 165, 0, 0.35)", rgba("#ffa500", 0.35))
	assert.Equal(t, "#ffa500", rgba("#ffa500", 1))
	assert.Equal(t, "cyan", rgba("cyan", 0.5))
}

func TestGetValueForCell(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"4", 4},
		{"2.5", 2.5},
		{"0:00:02", "0:00:02"},
		{"12,345", "12,345"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, getValueForCell(tt.in))
		})
	}
}
