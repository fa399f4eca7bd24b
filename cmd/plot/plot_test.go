package plot

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlags(t *testing.T) {
	dir := t.TempDir()
	log := filepath.Join(dir, "sourcextractor.log")
	samples := filepath.Join(dir, "pidstat.log")
	require.NoError(t, os.WriteFile(log, []byte{}, 0644))
	require.NoError(t, os.WriteFile(samples, []byte{}, 0644))
	inputs := []string{"-l", log, "-s", samples}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"inputs", inputs, false},
		{"missing log", []string{"-l", filepath.Join(dir, "missing"), "-s", samples}, true},
		{"log is a directory", []string{"-l", dir, "-s", samples}, true},
		{"series", append([]string{"--left", "sources", "--right", "segmented"}, inputs...), false},
		{"no right axis", append([]string{"--right", "none"}, inputs...), false},
		{"unknown left", append([]string{"--left", "gpu"}, inputs...), true},
		{"unknown right", append([]string{"--right", "gpu"}, inputs...), true},
		{"negative cores", append([]string{"--n-cores=-1"}, inputs...), true},
		{"formats", append([]string{"--format", "html,png,xlsx"}, inputs...), false},
		{"unknown format", append([]string{"--format", "pdf"}, inputs...), true},
		{"manifest", []string{"--manifest", filepath.Join(dir, "run.json")}, false},
		{"manifest with log", []string{"--manifest", filepath.Join(dir, "run.json"), "-l", log}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// a fresh command resets every flag to its default
			cmd := &cobra.Command{Use: cmdName}
			addFlags(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))
			err := validateFlags(cmd, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlagGroupsNameExistingFlags(t *testing.T) {
	for _, group := range getFlagGroups() {
		for _, flag := range group.Flags {
			assert.NotNil(t, Cmd.Flags().Lookup(flag.Name), flag.Name)
			assert.NotEmpty(t, flag.Help, flag.Name)
		}
	}
}
