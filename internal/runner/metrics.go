package runner

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
)

const promMetricPrefix = "sxprof_"

// runMetrics exposes the live state of one run. Each run registers its
// gauges on a private registry labeled with the run id.
type runMetrics struct {
	registry  *prometheus.Registry
	samples   *prometheus.GaugeVec
	progress  *prometheus.GaugeVec
	milestone *prometheus.GaugeVec
}

func newRunMetrics(runID string) *runMetrics {
	constLabels := prometheus.Labels{"run_id": runID}
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        promMetricPrefix + "sample",
				Help:        "Latest value of each numeric sampler column",
				ConstLabels: constLabels,
			},
			[]string{"column"},
		),
		progress: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        promMetricPrefix + "progress",
				Help:        "Latest value reported by each progress counter",
				ConstLabels: constLabels,
			},
			[]string{"counter"},
		),
		milestone: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        promMetricPrefix + "milestone_seconds",
				Help:        "Seconds from the first log line to each observed milestone",
				ConstLabels: constLabels,
			},
			[]string{"milestone"},
		),
	}
	m.registry.MustRegister(m.samples, m.progress, m.milestone)
	return m
}

// sanitizeLabel turns a sampler column such as kB_rd/s or %CPU into a label value
func sanitizeLabel(name string) string {
	sanitized := strings.ReplaceAll(name, "%", "pct_")
	sanitized = strings.ReplaceAll(sanitized, "/", "_per_")
	return sanitized
}

func (m *runMetrics) observeSample(row pidstat.Row) {
	for column, value := range row.Values {
		if value.IsText || math.IsNaN(value.Num) {
			continue
		}
		m.samples.WithLabelValues(sanitizeLabel(column)).Set(value.Num)
	}
}

func (m *runMetrics) observeSummary(summary *eventlog.Summary) {
	counters := []struct {
		name   string
		points []eventlog.Point
	}{
		{"segmented", summary.Segmented},
		{"detected", summary.Detected},
		{"deblended", summary.Deblended},
		{"measured", summary.Measured},
	}
	for _, c := range counters {
		if len(c.points) > 0 {
			m.progress.WithLabelValues(c.name).Set(float64(c.points[len(c.points)-1].Value))
		}
	}
	if len(summary.Background) > 0 {
		m.milestone.WithLabelValues("background").Set(summary.Background[len(summary.Background)-1])
	}
	phases := []struct {
		name     string
		interval eventlog.Interval
	}{
		{"segmentation", summary.Segmentation},
		{"deblending", summary.Deblending},
		{"measurement", summary.Measurement},
	}
	for _, p := range phases {
		if p.interval.Start != nil {
			m.milestone.WithLabelValues(p.name + "_start").Set(*p.interval.Start)
		}
		if p.interval.End != nil {
			m.milestone.WithLabelValues(p.name + "_end").Set(*p.interval.End)
		}
	}
}

// serve exposes /metrics on addr until ctx is done.
func (m *runMetrics) serve(ctx context.Context, addr string, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	return m.serveOn(ctx, listener, logger)
}

func (m *runMetrics) serveOn(ctx context.Context, listener net.Listener, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	logger.Info("starting Prometheus metrics server", slog.String("address", listener.Addr().String()))
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "Prometheus HTTP server failed")
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
