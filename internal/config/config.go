// Package config supplies defaults for command flags from an optional YAML
// file and from SXPROF_ environment variables.
//
// Keys are grouped by command, e.g.
//
//	run:
//	  interval: 2
//	  project-area: /opt/sourcextractor
//	plot:
//	  format: [html, png]
//
// The environment variable for run.project-area is SXPROF_RUN_PROJECT_AREA.
package config

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "SXPROF"

// DefaultFileName is searched for in the working and home directories when
// no file is given.
const DefaultFileName = ".sxprof.yaml"

// Load reads the config file at path. An empty path searches for
// DefaultFileName and is not an error when none exists.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read configuration file %s", path)
		}
		return v, nil
	}
	v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read configuration file")
		}
	}
	return v, nil
}

// ApplyToFlags gives every flag in fs that was not set on the command line
// the value configured under section.name, if there is one.
func ApplyToFlags(v *viper.Viper, section string, fs *pflag.FlagSet) error {
	var applyErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if applyErr != nil || f.Changed {
			return
		}
		key := f.Name
		if section != "" {
			key = section + "." + f.Name
		}
		if !v.IsSet(key) {
			return
		}
		var value string
		switch f.Value.Type() {
		case "stringSlice", "stringArray":
			value = strings.Join(v.GetStringSlice(key), ",")
		default:
			value = v.GetString(key)
		}
		if err := fs.Set(f.Name, value); err != nil {
			applyErr = errors.Wrapf(err, "invalid value %q for %s", value, key)
			return
		}
		slog.Debug("flag set from configuration", slog.String("key", key), slog.String("value", value))
	})
	return applyErr
}
