/*
Package util includes utility/helper functions that may be useful to other modules.
*/
package util

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ExpandUser expands '~' to user's home directory, if found, otherwise returns original path
func ExpandUser(path string) string {
	usr, err := user.Current()
	if err != nil {
		return path
	}
	if path == "~" {
		return usr.HomeDir
	} else if strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return filepath.Join(usr.HomeDir, path[2:])
	} else {
		return path
	}
}

// AbsPath returns absolute path after expanding '~' to user's home dir
// Use everywhere in place of filepath.Abs()
func AbsPath(path string) (string, error) {
	return filepath.Abs(ExpandUser(path))
}

// FileExists checks if a file exists at the given path.
// It returns a boolean indicating whether the file exists, and an error if the
// path refers to a non-regular file, e.g., a directory.
func FileExists(path string) (exists bool, err error) {
	var fileInfo fs.FileInfo
	fileInfo, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			exists = false
			err = nil
			return
		}
		return
	}
	if !fileInfo.Mode().IsRegular() {
		err = fmt.Errorf("%s not a file", path)
		return
	}
	exists = true
	return
}

// DirectoryExists checks if the specified directory exists.
// It returns a boolean indicating whether the directory exists and an error if the
// path refers to anything other than a directory, e.g., a regular file.
func DirectoryExists(path string) (exists bool, err error) {
	var fileInfo fs.FileInfo
	fileInfo, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			exists = false
			err = nil
			return
		}
		return
	}
	if !fileInfo.Mode().IsDir() {
		err = fmt.Errorf("%s not a directory", path)
		return
	}
	exists = true
	return
}

// FileOrDirectoryExists checks if a file or directory exists at the given file path.
// It returns true if the file or directory exists, and false otherwise.
func FileOrDirectoryExists(filePath string) bool {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return false
	}
	return true
}

// CreateDirectoryIfNotExists creates a directory at the specified path if it does not already exist.
// If the directory already exists, it does nothing and returns nil.
// If there is an error while creating the directory, it returns an error with a descriptive message.
func CreateDirectoryIfNotExists(dir string, perm os.FileMode) error {
	if FileOrDirectoryExists(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("failed to create directory: '%s', error: '%s'", dir, err.Error())
	}
	return nil
}

// RemoveIfExists removes a file left over from an earlier run. A missing file is not an error.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %v", path, err)
	}
	return nil
}

// UniqueAppend appends an item to a slice if it is not already present
func UniqueAppend[T comparable](slice []T, item T) []T {
	if slices.Contains(slice, item) {
		return slice
	}
	return append(slice, item)
}

var versionRegex = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?[-]?(alpha|beta|rc)?[\.]?(\d+)?`)

// CompareVersions compares two version strings
// version format: major[.minor[.patch]]<-alpha|beta|rc><.build>
// examples: 0.19, 1.2.3, 1.2.3-alpha.4
// Missing minor or patch numbers count as zero.
// Returns
// -1 if v1 is less than v2
// 0 if v1 is equal to v2
// 1 if v1 is greater than v2
// An error if the version strings are not valid
func CompareVersions(v1, v2 string) (int, error) {
	v1Parts := versionRegex.FindStringSubmatch(v1)
	if v1Parts == nil {
		return 0, fmt.Errorf("error: unable to parse version string: %s", v1)
	}
	v2Parts := versionRegex.FindStringSubmatch(v2)
	if v2Parts == nil {
		return 0, fmt.Errorf("error: unable to parse version string: %s", v2)
	}
	// compare version parts
	for i := 1; i < 6; i++ {
		if i == 4 {
			v1Part := v1Parts[i]
			v2Part := v2Parts[i]
			// compare alpha, beta, rc
			if v1Part == "" && v2Part == "" {
				return 0, nil
			} else if v1Part == "" && v2Part != "" { // v2 is tagged with alpha, beta, rc
				return 1, nil
			} else if v1Part != "" && v2Part == "" { // v1 is tagged with alpha, beta, rc
				return -1, nil
			} else { // both v1 and v2 are tagged with alpha, beta, rc
				intVals := map[string]int{"alpha": 1, "beta": 2, "rc": 3}
				if intVals[v1Part] > intVals[v2Part] {
					return 1, nil
				} else if intVals[v1Part] < intVals[v2Part] {
					return -1, nil
				}
			}
			continue
		}
		v1Part, err := versionNumber(v1Parts[i])
		if err != nil {
			return 0, err
		}
		v2Part, err := versionNumber(v2Parts[i])
		if err != nil {
			return 0, err
		}
		if v1Part > v2Part {
			return 1, nil
		} else if v1Part < v2Part {
			return -1, nil
		}
	}
	// The version strings are equal
	return 0, nil
}

func versionNumber(part string) (int, error) {
	if part == "" {
		return 0, nil
	}
	return strconv.Atoi(part)
}

// HighestVersion returns the greatest of the given version strings. Strings
// that are not versions are ignored. The second return is false when none is.
func HighestVersion(versions []string) (string, bool) {
	var highest string
	found := false
	for _, v := range versions {
		if !versionRegex.MatchString(v) {
			continue
		}
		if !found {
			highest, found = v, true
			continue
		}
		if cmp, err := CompareVersions(v, highest); err == nil && cmp > 0 {
			highest = v
		}
	}
	return highest, found
}
