package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sxprof/internal/chart"
	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
)

const testLog = `2020-06-10T15:22:05CEST SourceXtractor INFO : thread-count = 4
2020-06-10T15:22:07CEST SourceXtractor INFO : Detected 10 sources
`

const testPidstat = `# Time %CPU kB_rd/s RSS Command
1591795325 100 1024 2048 sourcextractor++
1591795330 200 2048 4096 sourcextractor++
`

func writeRun(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	log := filepath.Join(dir, "sourcextractor.log")
	samples := filepath.Join(dir, "pidstat.log")
	require.NoError(t, os.WriteFile(log, []byte(testLog), 0644))
	require.NoError(t, os.WriteFile(samples, []byte(testPidstat), 0644))
	return log, samples
}

func TestLoadReportDataDefaults(t *testing.T) {
	log, samples := writeRun(t)
	data, err := LoadReportData(ReportInput{LogPath: log, PidstatPath: samples, Left: "cpu"})
	require.NoError(t, err)
	assert.Equal(t, "sourcextractor.log", data.Title)
	assert.Equal(t, 8.0, data.NCores)
	require.NotNil(t, data.Figure)
	require.NotNil(t, data.Figure.Right)
	assert.Equal(t, chart.SeriesMemory, data.Figure.Right.Series)
	cpu, err := data.Samples.Float("CPU")
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 16}, cpu)
}

func TestLoadReportDataOverrides(t *testing.T) {
	log, samples := writeRun(t)
	data, err := LoadReportData(ReportInput{LogPath: log, PidstatPath: samples, NCores: 2, Title: "run 1", Left: "sources", Right: RightAxisNone})
	require.NoError(t, err)
	assert.Equal(t, "run 1", data.Title)
	assert.Equal(t, 2.0, data.NCores)
	assert.Nil(t, data.Figure.Right)
	assert.Equal(t, chart.SeriesSources, data.Figure.Left.Series)
}

func TestLoadReportDataErrors(t *testing.T) {
	log, samples := writeRun(t)
	_, err := LoadReportData(ReportInput{LogPath: log, PidstatPath: samples, Left: "gpu"})
	assert.ErrorIs(t, err, chart.ErrUnknownSeries)
	_, err = LoadReportData(ReportInput{LogPath: filepath.Join(t.TempDir(), "missing"), PidstatPath: samples, Left: "cpu"})
	assert.Error(t, err)
}

func TestLoadReportDataMissingColumn(t *testing.T) {
	log, _ := writeRun(t)
	samples := filepath.Join(t.TempDir(), "pidstat.log")
	require.NoError(t, os.WriteFile(samples, []byte("# Time %CPU\n1 10\n2 20\n"), 0644))
	_, err := LoadReportData(ReportInput{LogPath: log, PidstatPath: samples, Left: "cpu", Right: "memory"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pidstat.ErrMissingColumn)
	assert.Contains(t, err.Error(), "failed to compose plot")
}

func TestDefaultNCores(t *testing.T) {
	threads := 6
	assert.Equal(t, 12.0, DefaultNCores(&eventlog.Summary{ThreadCount: &threads}))
	assert.Equal(t, float64(runtime.NumCPU()), DefaultNCores(&eventlog.Summary{}))
	assert.Equal(t, float64(runtime.NumCPU()), DefaultNCores(nil))
}
