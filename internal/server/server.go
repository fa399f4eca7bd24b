// Package server serves a rendered profile over HTTP.
package server

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"sxprof/internal/report"
)

const shutdownTimeout = 10 * time.Second

var contentTypes = map[string]string{
	report.FormatHtml: "text/html; charset=utf-8",
	report.FormatPng:  "image/png",
	report.FormatXlsx: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	report.FormatJson: "application/json",
	report.FormatTxt:  "text/plain; charset=utf-8",
}

// Server renders reports on request from data parsed once at startup.
type Server struct {
	data   report.Data
	router *mux.Router
	logger *slog.Logger
}

// New builds the router. A nil logger uses slog.Default().
func New(data report.Data, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{data: data, router: mux.NewRouter(), logger: logger}
	s.router.HandleFunc("/", s.serveFormat(report.FormatHtml)).Methods(http.MethodGet)
	s.router.HandleFunc("/chart.png", s.serveFormat(report.FormatPng)).Methods(http.MethodGet)
	s.router.HandleFunc("/summary.json", s.serveFormat(report.FormatJson)).Methods(http.MethodGet)
	s.router.HandleFunc("/report.{format}", s.serveReport).Methods(http.MethodGet)
	s.router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	s.router.Use(s.logging)
	return s
}

// Handler returns the HTTP handler, e.g., for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving report", slog.String("address", listener.Addr().String()))
		errCh <- srv.Serve(listener)
	}()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "report server failed")
		}
		return nil
	case <-ctx.Done():
	}
	s.logger.Info("shutting down report server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "report server forced to shutdown")
	}
	return nil
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	if _, ok := contentTypes[format]; !ok {
		http.Error(w, "unknown report format: "+format, http.StatusNotFound)
		return
	}
	s.serveFormat(format)(w, r)
}

func (s *Server) serveFormat(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := report.Create(format, s.data)
		if err != nil {
			s.logger.Error("failed to render report", slog.String("format", format), slog.String("error", err.Error()))
			http.Error(w, "failed to render report", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypes[format])
		if format == report.FormatXlsx {
			w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
		}
		if _, err := w.Write(out); err != nil {
			s.logger.Warn("failed to write response", slog.String("error", err.Error()))
		}
	}
}

// logging records every request at debug level.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Duration("elapsed", time.Since(start)))
	})
}
