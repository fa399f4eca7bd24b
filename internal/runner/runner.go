package runner

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"sxprof/internal/eventlog"
	"sxprof/internal/pidstat"
	"sxprof/internal/progress"
	"sxprof/internal/util"
)

// DefaultSampler is the sampler executable. -h prints one line per sample,
// -I divides CPU usage by the number of CPUs, -d adds I/O, -u CPU and -r memory.
const DefaultSampler = "pidstat"

const samplerFlags = "-hIdur"

// time allowed for the binary to exit after it is asked to terminate
const terminateWaitDelay = 10 * time.Second

// Options configures Run.
type Options struct {
	Binary Binary
	// Args are forwarded to the binary, before --log-file.
	Args        []string
	PidstatPath string
	LogPath     string
	// Interval is the sampling period in seconds.
	Interval int
	// Sampler defaults to DefaultSampler.
	Sampler string
	// MetricsAddr, when set, serves live Prometheus metrics during the run.
	MetricsAddr string
	// ManifestDir receives run.json; empty means the directory of PidstatPath.
	ManifestDir string
	// Progress draws a status spinner on stderr.
	Progress bool
	// Stdout and Stderr of the binary; nil discards the output.
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// ExitError reports a binary that finished with a non-zero exit code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", BinaryName, e.Code)
}

// statusFunc updates the spinner, when there is one
type statusFunc func(label, status string)

// Run starts the binary with the sampler attached to it, waits for the
// binary to finish, then stops the sampler. The returned manifest is
// complete whenever the binary was started, even if an error is returned.
func Run(ctx context.Context, opts Options) (*Manifest, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Sampler == "" {
		opts.Sampler = DefaultSampler
	}
	if opts.Interval <= 0 {
		return nil, errors.Errorf("sampling interval must be positive, got %d", opts.Interval)
	}
	if opts.ManifestDir == "" {
		opts.ManifestDir = filepath.Dir(opts.PidstatPath)
	}
	logger := opts.Logger
	for _, path := range []string{opts.LogPath, opts.PidstatPath} {
		if err := util.RemoveIfExists(path); err != nil {
			return nil, err
		}
	}
	manifest := newManifest(opts)
	logger = logger.With(slog.String("run_id", manifest.RunID))

	status := func(string, string) {}
	binaryLabel := filepath.Base(opts.Binary.Path)
	samplerLabel := filepath.Base(opts.Sampler)
	if opts.Progress {
		spinner := progress.NewMultiSpinner()
		_ = spinner.AddSpinner(binaryLabel)
		_ = spinner.AddSpinner(samplerLabel)
		spinner.Start()
		defer spinner.Finish()
		status = func(label, s string) { _ = spinner.Status(label, s) }
	}

	var metrics *runMetrics
	if opts.MetricsAddr != "" {
		metrics = newRunMetrics(manifest.RunID)
	}

	sampleFile, err := os.Create(opts.PidstatPath) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sampler output")
	}
	defer sampleFile.Close()

	// the binary is not bound to the supporting goroutines: it is only
	// terminated when the caller's context is done
	binaryCmd := exec.CommandContext(ctx, opts.Binary.Path, append(append([]string{}, opts.Args...), "--log-file", opts.LogPath)...) // #nosec G204
	binaryCmd.Env = opts.Binary.Env
	binaryCmd.Stdout = opts.Stdout
	binaryCmd.Stderr = opts.Stderr
	binaryCmd.Cancel = func() error { return binaryCmd.Process.Signal(syscall.SIGTERM) }
	binaryCmd.WaitDelay = terminateWaitDelay
	slog.Debug("running local command", slog.String("cmd", binaryCmd.String()))
	if err := binaryCmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", opts.Binary.Path)
	}
	manifest.Start = time.Now()
	manifest.PID = binaryCmd.Process.Pid
	logger.Info("running", slog.String("binary", opts.Binary.Path), slog.Int("pid", manifest.PID))
	status(binaryLabel, fmt.Sprintf("running with PID %d", manifest.PID))

	samplerCmd := exec.Command(opts.Sampler, samplerFlags, "-p", strconv.Itoa(manifest.PID), strconv.Itoa(opts.Interval)) // #nosec G204
	samplerCmd.Stdout = sampleFile
	if err := samplerCmd.Start(); err != nil {
		logger.Error("failed to start sampler, terminating binary", slog.String("sampler", opts.Sampler), slog.String("error", err.Error()))
		_ = binaryCmd.Process.Signal(syscall.SIGTERM)
		_ = binaryCmd.Wait()
		return nil, errors.Wrapf(err, "failed to start %s", opts.Sampler)
	}
	logger.Info("sampler attached", slog.String("sampler", opts.Sampler), slog.Int("pid", samplerCmd.Process.Pid))
	status(samplerLabel, fmt.Sprintf("sampling every %ds", opts.Interval))

	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	g, gctx := errgroup.WithContext(watchCtx)
	tracker := eventlog.NewTracker(logger)
	g.Go(func() error {
		return followLog(gctx, opts.LogPath, tracker, metrics, func(s string) { status(binaryLabel, s) }, logger)
	})
	g.Go(func() error {
		return followSamples(gctx, opts.PidstatPath, metrics, func(s string) { status(samplerLabel, s) }, logger)
	})
	if metrics != nil {
		g.Go(func() error {
			return metrics.serve(gctx, opts.MetricsAddr, logger)
		})
	}

	waitErr := binaryCmd.Wait()
	manifest.End = time.Now()
	manifest.ExitCode = -1
	if binaryCmd.ProcessState != nil {
		manifest.ExitCode = binaryCmd.ProcessState.ExitCode()
	}
	logger.Info("binary finished", slog.Int("exit_code", manifest.ExitCode), slog.Duration("elapsed", manifest.End.Sub(manifest.Start)))
	status(binaryLabel, fmt.Sprintf("finished with exit code %d", manifest.ExitCode))

	stopSampler(samplerCmd, logger)
	status(samplerLabel, "stopped")

	stopWatching()
	if err := g.Wait(); err != nil {
		logger.Warn("run monitoring failed", slog.String("error", err.Error()))
	}
	manifest.Summary = tracker.Summary()
	if path, err := manifest.Write(opts.ManifestDir); err != nil {
		logger.Warn("failed to write run manifest", slog.String("error", err.Error()))
	} else {
		logger.Debug("run manifest written", slog.String("path", path))
	}

	if ctx.Err() != nil {
		return manifest, errors.Wrap(ctx.Err(), "run interrupted")
	}
	if waitErr != nil {
		exitErr := &exec.ExitError{}
		if errors.As(waitErr, &exitErr) {
			return manifest, &ExitError{Code: exitErr.ExitCode()}
		}
		return manifest, errors.Wrapf(waitErr, "failed waiting for %s", opts.Binary.Path)
	}
	return manifest, nil
}

// stopSampler terminates the sampler and reaps it.
func stopSampler(cmd *exec.Cmd, logger *slog.Logger) {
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Warn("failed to terminate sampler", slog.String("error", err.Error()))
	}
	// the sampler exits because of the signal, its exit status carries no information
	_ = cmd.Wait()
}

// followLog feeds the binary's log through tracker as it is written.
func followLog(ctx context.Context, path string, tracker *eventlog.Tracker, metrics *runMetrics, status func(string), logger *slog.Logger) error {
	var parser eventlog.LineParser
	return newFollower(path, logger).run(ctx, func(line string) {
		if line == "" {
			return
		}
		ev, err := parser.Parse(line)
		if err != nil {
			tracker.Skip()
			return
		}
		switch tracker.Observe(ev) {
		case eventlog.KindOther, eventlog.KindInvalid:
			return
		}
		status(ev.Message)
		if metrics != nil {
			metrics.observeSummary(tracker.Summary())
		}
	})
}

// followSamples reports the sampler output as it is written.
func followSamples(ctx context.Context, path string, metrics *runMetrics, status func(string), logger *slog.Logger) error {
	var parser pidstat.LineParser
	return newFollower(path, logger).run(ctx, func(line string) {
		row, kind, err := parser.Parse(line)
		if err != nil || kind != pidstat.LineSample {
			return
		}
		status(sampleStatus(row))
		if metrics != nil {
			metrics.observeSample(row)
		}
	})
}

func sampleStatus(row pidstat.Row) string {
	s := "sampling"
	if cpu, ok := row.Values["%CPU"]; ok && !cpu.IsText {
		s += fmt.Sprintf(", %%CPU %.1f", cpu.Num)
	}
	if rss, ok := row.Values["RSS"]; ok && !rss.IsText {
		s += fmt.Sprintf(", RSS %.0f MiB", rss.Num/1024)
	}
	return s
}
