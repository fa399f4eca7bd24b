package run

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"defaults", nil, false},
		{"interval", []string{"-i", "1"}, false},
		{"zero interval", []string{"--interval", "0"}, true},
		{"same file", []string{"--pidstat", "out.log", "--log", "./out.log"}, true},
		{"unknown format", []string{"--plot", "--format", "pdf"}, true},
		{"all formats", []string{"--plot", "--format", "all"}, false},
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
