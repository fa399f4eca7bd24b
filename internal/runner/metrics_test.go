package runner

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
)

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "pct_CPU", sanitizeLabel("%CPU"))
	assert.Equal(t, "kB_rd_per_s", sanitizeLabel("kB_rd/s"))
	assert.Equal(t, "RSS", sanitizeLabel("RSS"))
}

func TestObserveSample(t *testing.T) {
	m := newRunMetrics("test")
	var p pidstat.LineParser
	_, _, err := p.Parse("# Time %CPU RSS Command")
	require.NoError(t, err)
	row, _, err := p.Parse("100 250.5 4096 sourcextractor++")
	require.NoError(t, err)
	m.observeSample(row)

	assert.Equal(t, 250.5, testutil.ToFloat64(m.samples.WithLabelValues("pct_CPU")))
	assert.Equal(t, 4096.0, testutil.ToFloat64(m.samples.WithLabelValues("RSS")))
	// text columns are not exported
	assert.Equal(t, 2, testutil.CollectAndCount(m.samples))
}

func TestObserveSummary(t *testing.T) {
	log := "2020-06-10T15:22:05CEST SourceXtractor INFO : Background for image a.fits done\n" +
		"2020-06-10T15:22:07CEST SourceXtractor INFO : Segmentation 10 of 100 lines\n" +
		"2020-06-10T15:22:08CEST SourceXtractor INFO : Detected 10 sources\n" +
		"2020-06-10T15:22:09CEST SourceXtractor INFO : Detected 25 sources\n"
	summary, err := eventlog.ReadFrom(strings.NewReader(log), nil)
	require.NoError(t, err)

	m := newRunMetrics("test")
	m.observeSummary(summary)
	assert.Equal(t, 25.0, testutil.ToFloat64(m.progress.WithLabelValues("detected")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.progress.WithLabelValues("segmented")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.milestone.WithLabelValues("background")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.milestone.WithLabelValues("segmentation_start")))
}

func TestMetricsServer(t *testing.T) {
	m := newRunMetrics("abc")
	m.samples.WithLabelValues("RSS").Set(42)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- m.serveOn(ctx, listener, slog.New(slog.DiscardHandler))
	}()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		out, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(out)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, `sxprof_sample{column="RSS",run_id="abc"} 42`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}
