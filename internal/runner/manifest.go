package runner

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"sxprof/internal/eventlog"
)

// ManifestFileName is written next to the run outputs.
const ManifestFileName = "run.json"

// Manifest records what was run and where its outputs went.
type Manifest struct {
	RunID    string            `json:"run_id"`
	Binary   Binary            `json:"binary"`
	Args     []string          `json:"args"`
	Log      string            `json:"log"`
	Pidstat  string            `json:"pidstat"`
	Interval int               `json:"interval"`
	PID      int               `json:"pid"`
	Start    time.Time         `json:"start"`
	End      time.Time         `json:"end"`
	ExitCode int               `json:"exit_code"`
	Summary  *eventlog.Summary `json:"summary,omitempty"`
}

func newManifest(opts Options) *Manifest {
	return &Manifest{
		RunID:    uuid.NewString(),
		Binary:   opts.Binary,
		Args:     opts.Args,
		Log:      opts.LogPath,
		Pidstat:  opts.PidstatPath,
		Interval: opts.Interval,
	}
}

// Write stores the manifest as dir/run.json and returns its path.
func (m *Manifest) Write(dir string) (string, error) {
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode run manifest")
	}
	path := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil { // #nosec G306
		return "", errors.Wrap(err, "failed to write run manifest")
	}
	return path, nil
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to read run manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	return &m, nil
}
