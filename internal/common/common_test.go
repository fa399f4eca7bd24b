package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sxprof/internal/eventlog"
	"sxprof/internal/report"
)

func TestCreateReports(t *testing.T) {
	summary, err := eventlog.ReadFrom(strings.NewReader("2020-06-10T15:22:05CEST SourceXtractor INFO : thread-count = 4\n"), nil)
	require.NoError(t, err)
	appContext := AppContext{OutputDir: filepath.Join(t.TempDir(), "out")}

	paths, err := CreateReports(appContext, "sourcextractor", []string{report.FormatTxt, report.FormatJson}, report.Data{Title: "run", Summary: summary})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(appContext.OutputDir, "sourcextractor.txt"),
		filepath.Join(appContext.OutputDir, "sourcextractor.json"),
	}, paths)
	text, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(text), "Thread Count")

	// png needs a figure, the txt and json written before the failure are reported
	paths, err = CreateReports(appContext, "partial", []string{report.FormatTxt, report.FormatPng}, report.Data{Summary: summary})
	assert.Error(t, err)
	assert.Len(t, paths, 1)
}

func TestGetAppContext(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	child := &cobra.Command{Use: "child"}
	root.AddCommand(child)
	assert.Equal(t, AppContext{}, GetAppContext(child))

	root.SetContext(context.WithValue(context.Background(), AppContext{}, AppContext{OutputDir: "/tmp/out"}))
	assert.Equal(t, "/tmp/out", GetAppContext(child).OutputDir)
}

func TestUsageFunc(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	child := &cobra.Command{Use: "child", Example: "  $ root child", Run: func(*cobra.Command, []string) {}}
	child.Flags().IntP("interval", "i", 5, "")
	root.AddCommand(child)
	child.SetUsageFunc(UsageFunc(func() []FlagGroup {
		return []FlagGroup{{GroupName: "Options", Flags: []Flag{{Name: "interval", Help: "sampling interval"}, {Name: "missing"}}}}
	}))
	var out bytes.Buffer
	child.SetOut(&out)
	require.NoError(t, child.Usage())
	text := out.String()
	assert.Contains(t, text, "Options:")
	assert.Regexp(t, `-i, --interval\s+sampling interval \(default: 5\)`, text)
	assert.NotContains(t, text, "missing")
	assert.Contains(t, text, "--debug")
}

func TestFlagValidationError(t *testing.T) {
	cmd := &cobra.Command{Use: "plot"}
	err := FlagValidationError(cmd, "n-cores must be positive")
	assert.EqualError(t, err, "n-cores must be positive")
	assert.True(t, cmd.SilenceUsage)
}
