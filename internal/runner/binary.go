// Package runner locates a SourceXtractor++ installation and runs it with a
// resource sampler attached to its process.
package runner

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"time"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"sxprof/internal/util"
)

// BinaryName is the executable looked up in the project area and on $PATH.
const BinaryName = "sourcextractor++"

// ErrBinaryNotFound is returned when neither the project area nor $PATH
// provide the binary.
var ErrBinaryNotFound = errors.New(BinaryName + " not found")

// working areas checked, in order, before falling back to the highest version
var defaultAreas = []string{"SourceXtractorPlusPlus", "develop", "master"}

var versionGlob = glob.MustCompile("[0-9]*")

const runScriptTimeout = 60 * time.Second

// Binary is an executable together with the environment it must run in.
// A nil Env inherits the environment of this process.
type Binary struct {
	Path    string   `json:"path"`
	Env     []string `json:"-"`
	Version string   `json:"version,omitempty"`
}

// FindBinary looks for the binary, in order:
//  1. in the project area, under version or, when version is empty, under
//     the first default working area or the highest version found there
//  2. on $PATH
func FindBinary(ctx context.Context, projectArea, binaryTag, version string) (Binary, error) {
	if projectArea != "" {
		if version == "" {
			version = findVersion(projectArea)
		}
		if version != "" {
			binary, found, err := findInProjectArea(ctx, projectArea, binaryTag, version)
			if err != nil {
				return Binary{}, err
			}
			if found {
				return binary, nil
			}
		}
	}
	path, err := exec.LookPath(BinaryName)
	if err != nil {
		return Binary{}, errors.Wrapf(ErrBinaryNotFound, "not in project area '%s' nor on $PATH", projectArea)
	}
	return Binary{Path: path}, nil
}

// findVersion returns the working area with the highest priority, or "" when
// the project area has none.
func findVersion(projectArea string) string {
	for _, area := range defaultAreas {
		slog.Info("looking for working area", slog.String("area", area))
		if util.FileOrDirectoryExists(filepath.Join(projectArea, area)) {
			return area
		}
	}
	entries, err := os.ReadDir(projectArea)
	if err != nil {
		slog.Debug("cannot list project area", slog.String("path", projectArea), slog.String("error", err.Error()))
		return ""
	}
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() && versionGlob.Match(entry.Name()) {
			versions = append(versions, entry.Name())
		}
	}
	highest, _ := util.HighestVersion(versions)
	return highest
}

func findInProjectArea(ctx context.Context, projectArea, binaryTag, version string) (Binary, bool, error) {
	buildDir := filepath.Join(projectArea, version, "build."+binaryTag)
	runScript := filepath.Join(buildDir, "run")
	slog.Info("checking existence of run script", slog.String("path", runScript))
	exists, err := util.FileExists(runScript)
	if err != nil || !exists {
		return Binary{}, false, nil
	}
	env, err := runEnvironment(ctx, runScript)
	if err != nil {
		return Binary{}, false, err
	}
	return Binary{
		Path:    filepath.Join(buildDir, "bin", BinaryName),
		Env:     env,
		Version: version,
	}, true, nil
}

// runEnvironment executes the build's run script, which prints the
// environment of the build as a dictionary literal, e.g. {'PATH': '/usr/bin'}.
func runEnvironment(ctx context.Context, runScript string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, runScriptTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, runScript, "--py") // #nosec G204
	slog.Debug("running local command", slog.String("cmd", cmd.String()))
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to run %s", runScript)
	}
	return parseEnvironment(out)
}

func parseEnvironment(out []byte) ([]string, error) {
	vars := map[string]string{}
	if err := yaml.Unmarshal(out, &vars); err != nil {
		return nil, errors.Wrap(err, "failed to parse run script environment")
	}
	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	slices.Sort(env)
	return env, nil
}
