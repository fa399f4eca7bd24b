package config

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `run:
  interval: 2
  project-area: /opt/sourcextractor
plot:
  format: [html, png]
  n-cores: 16
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sxprof.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.Int("interval", 5, "")
	fs.String("project-area", "", "")
	fs.String("log", "sourcextractor.log", "")
	return fs
}

func TestApplyToFlags(t *testing.T) {
	v, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	fs := runFlags()
	require.NoError(t, fs.Parse([]string{"--interval", "10"}))
	require.NoError(t, ApplyToFlags(v, "run", fs))

	// the command line wins over the file
	interval, err := fs.GetInt("interval")
	require.NoError(t, err)
	assert.Equal(t, 10, interval)
	area, err := fs.GetString("project-area")
	require.NoError(t, err)
	assert.Equal(t, "/opt/sourcextractor", area)
	// not configured, keeps its default
	log, err := fs.GetString("log")
	require.NoError(t, err)
	assert.Equal(t, "sourcextractor.log", log)
}

func TestApplyToFlagsSlice(t *testing.T) {
	v, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)
	fs := pflag.NewFlagSet("plot", pflag.ContinueOnError)
	fs.StringSlice("format", []string{"html"}, "")
	fs.Float64("n-cores", 0, "")
	require.NoError(t, fs.Parse(nil))
	require.NoError(t, ApplyToFlags(v, "plot", fs))

	formats, err := fs.GetStringSlice("format")
	require.NoError(t, err)
	assert.Equal(t, []string{"html", "png"}, formats)
	ncores, err := fs.GetFloat64("n-cores")
	require.NoError(t, err)
	assert.Equal(t, 16.0, ncores)
}

func TestApplyToFlagsFromEnvironment(t *testing.T) {
	t.Setenv("SXPROF_RUN_PROJECT_AREA", "/env/area")
	v, err := Load(writeConfig(t, "run:\n  interval: 2\n"))
	require.NoError(t, err)
	fs := runFlags()
	require.NoError(t, fs.Parse(nil))
	require.NoError(t, ApplyToFlags(v, "run", fs))
	area, err := fs.GetString("project-area")
	require.NoError(t, err)
	assert.Equal(t, "/env/area", area)
}

func TestApplyToFlagsInvalidValue(t *testing.T) {
	v, err := Load(writeConfig(t, "run:\n  interval: often\n"))
	require.NoError(t, err)
	fs := runFlags()
	require.NoError(t, fs.Parse(nil))
	assert.Error(t, ApplyToFlags(v, "run", fs))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	v, err := Load("")
	require.NoError(t, err)
	assert.False(t, v.IsSet("run.interval"))
}
