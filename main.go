// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/pkg/errors"

	"sxprof/cmd"
	"sxprof/internal/util"
)

// profileEnv turns on self-profiling. Its value is the directory for the
// profiles; any value that is not a directory means the working directory.
const profileEnv = "SXPROF_PROFILE"

func main() {
	if dir := os.Getenv(profileEnv); dir != "" {
		if exists, _ := util.DirectoryExists(dir); !exists {
			dir = "."
		}
		stop, err := startProfiling(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := stop(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}()
	}
	cmd.Execute()
}

// startProfiling starts a CPU profile in dir. The returned stop function ends
// it and writes a heap profile next to it.
func startProfiling(dir string) (stop func() error, err error) {
	cpuPath := filepath.Join(dir, "cpu.prof")
	memPath := filepath.Join(dir, "mem.prof")
	cpuFile, err := os.Create(cpuPath) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cpu profile")
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		_ = cpuFile.Close()
		return nil, errors.Wrap(err, "failed to start cpu profile")
	}
	stop = func() error {
		pprof.StopCPUProfile()
		if err := cpuFile.Close(); err != nil {
			return errors.Wrap(err, "failed to close cpu profile")
		}
		memFile, err := os.Create(memPath) // #nosec G304
		if err != nil {
			return errors.Wrap(err, "failed to create heap profile")
		}
		defer memFile.Close()
		if err := pprof.WriteHeapProfile(memFile); err != nil {
			return errors.Wrap(err, "failed to write heap profile")
		}
		fmt.Fprintf(os.Stderr, "Profiles written to %s and %s, analyze with 'go tool pprof'\n", cpuPath, memPath)
		return nil
	}
	return stop, nil
}
