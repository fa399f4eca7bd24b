package eventlog

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readString(t *testing.T, log string) *Summary {
	t.Helper()
	summary, err := ReadFrom(strings.NewReader(log), nil)
	require.NoError(t, err)
	return summary
}

func TestThreadCountAndSegmentationStart(t *testing.T) {
	summary := readString(t, "00:00:00 L INFO t thread-count = 4\n00:00:01 L INFO t Segmentation 5 of 10 done\n")
	require.NotNil(t, summary.ThreadCount)
	assert.Equal(t, 4, *summary.ThreadCount)
	require.NotNil(t, summary.Segmentation.Start)
	assert.Equal(t, 1.0, *summary.Segmentation.Start)
}

func TestDeblendingEndIgnoresRepeatedCount(t *testing.T) {
	summary := readString(t, strings.Join([]string{
		"00:00:00 L INFO t Deblended 3",
		"00:00:05 L INFO t Deblended 7",
		"00:00:09 L INFO t Deblended 7",
	}, "\n"))
	require.True(t, summary.Deblending.Complete())
	assert.Equal(t, 0.0, *summary.Deblending.Start)
	assert.Equal(t, 5.0, *summary.Deblending.End)
	assert.Len(t, summary.Deblended, 3)
}

func TestNoDeblendingOrMeasurement(t *testing.T) {
	summary := readString(t, "00:00:00 L INFO t starting up\n00:00:03 L INFO t Background for image 1\n")
	assert.Nil(t, summary.Deblending.Start)
	assert.Nil(t, summary.Deblending.End)
	assert.Nil(t, summary.Measurement.Start)
	assert.Nil(t, summary.Measurement.End)
	assert.Nil(t, summary.Segmentation.End)
	assert.Equal(t, []float64{3}, summary.Background)
}

func TestSeriesFollowMatchingLines(t *testing.T) {
	log := strings.Join([]string{
		"00:00:00 L INFO t Starting",
		"00:00:01 L INFO t Segmentation 1 of 4 done",
		"00:00:02 L INFO t Detected 10 sources",
		"00:00:03 L INFO t Segmentation 3 of 4 done",
		"00:00:04 L INFO t Detected 25 sources",
		"00:00:05 L INFO t Segmentation 2 of 4 done",
		"00:00:06 L INFO t Deblended 20",
		"00:00:07 L INFO t Measured 5 / 20",
		"00:00:08 L INFO t Measured 20 / 20",
		"00:00:09 L INFO t Deblended 25",
		"00:00:10 L INFO t Measured 25 / 25",
		"00:00:11 L INFO t Done",
	}, "\n")
	summary := readString(t, log)

	assert.Len(t, summary.Segmented, 3)
	assert.Len(t, summary.Detected, 2)
	assert.Len(t, summary.Deblended, 2)
	assert.Len(t, summary.Measured, 3)
	for _, series := range [][]Point{summary.Segmented, summary.Detected, summary.Deblended, summary.Measured} {
		for i := 1; i < len(series); i++ {
			assert.Less(t, series[i-1].Time, series[i].Time)
		}
	}
	// high-watermark: the out of order "2 of 4" does not move the end
	assert.Equal(t, 1.0, *summary.Segmentation.Start)
	assert.Equal(t, 3.0, *summary.Segmentation.End)
	assert.Equal(t, 4, summary.SegmentationTotal)
	assert.Equal(t, 7.0, *summary.Measurement.Start)
	assert.Equal(t, 10.0, *summary.Measurement.End)
	assert.Equal(t, 6.0, *summary.Deblending.Start)
	assert.Equal(t, 9.0, *summary.Deblending.End)
	require.NotNil(t, summary.Duration)
	assert.Equal(t, 11.0, *summary.Duration)
	assert.Equal(t, 12, summary.Lines)
	assert.Equal(t, 12, summary.Levels["INFO"])
}

func TestSegmentationEndDefaultsToDeblendingEnd(t *testing.T) {
	summary := readString(t, strings.Join([]string{
		"00:00:00 L INFO t Segmentation 0 of 4 done",
		"00:00:02 L INFO t Deblended 1",
		"00:00:04 L INFO t Deblended 2",
	}, "\n"))
	// line 0 never counts as progress
	assert.Nil(t, summary.Segmentation.Start)
	require.NotNil(t, summary.Segmentation.End)
	assert.Equal(t, 4.0, *summary.Segmentation.End)
}

func TestMeasuredWithoutCountIsIgnored(t *testing.T) {
	summary := readString(t, "00:00:00 L INFO t Measured all\n00:00:01 L INFO t Measured 3 sources\n")
	assert.Len(t, summary.Measured, 1)
	assert.Equal(t, 1.0, *summary.Measurement.Start)
}

func TestMalformedLinesAreSkippedWithWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	log := strings.Join([]string{
		"00:00:00 L INFO t tile-memory-limit = 512",
		"too short",
		"yesterday L INFO t not a timestamp",
		"00:00:02 L INFO t thread-count = many",
		"00:00:03 L WARN t Deblended 4",
	}, "\n")
	summary, err := ReadFrom(strings.NewReader(log), logger)
	require.NoError(t, err)
	require.NotNil(t, summary.TileMemoryLimit)
	assert.Equal(t, 512, *summary.TileMemoryLimit)
	assert.Nil(t, summary.ThreadCount)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 1, summary.Levels["WARN"])
	assert.Equal(t, 3, strings.Count(buf.String(), "level=WARN"))
}

func TestDurationEstimator(t *testing.T) {
	var d durationEstimator
	d.observe(2)
	assert.Nil(t, d.duration)
	d.observe(5)
	require.NotNil(t, d.duration)
	assert.Equal(t, 3.0, *d.duration)
	d.observe(9)
	assert.Equal(t, 7.0, *d.duration)
}

func TestTrackerKinds(t *testing.T) {
	tracker := NewTracker(nil)
	tests := []struct {
		message  string
		expected Kind
	}{
		{"thread-count = 8", KindThreadCount},
		{"tile-memory-limit = 1024", KindTileMemoryLimit},
		{"Background for image 'x.fits' done", KindBackground},
		{"Segmentation 1 of 9 done", KindSegmentation},
		{"Detected 3 sources", KindDetected},
		{"Measured 3 sources", KindMeasured},
		{"Deblended 3", KindDeblended},
		{"Deblended lots", KindInvalid},
		{"Loading configuration", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.expected, tracker.Observe(LogEvent{Message: tt.message, Level: "INFO"}))
		})
	}
}

func TestSummarySnapshotIsIndependent(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Observe(LogEvent{Elapsed: 1, Message: "Detected 1 sources"})
	first := tracker.Summary()
	tracker.Observe(LogEvent{Elapsed: 2, Message: "Detected 2 sources"})
	assert.Len(t, first.Detected, 1)
	assert.Len(t, tracker.Summary().Detected, 2)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sourcextractor.log")
	content := "2020-06-10T13:22:05CEST SourceXtractor  INFO : thread-count = 2\n" +
		"2020-06-10T13:22:35CEST SourceXtractor  INFO : Detected 12 sources\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	summary, err := Read(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, *summary.ThreadCount)
	assert.Equal(t, []Point{{Time: 30, Value: 12}}, summary.Detected)

	_, err = Read(filepath.Join(t.TempDir(), "missing.log"), nil)
	assert.Error(t, err)
}
