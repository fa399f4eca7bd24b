// Package common defines data structures and functions that are used by multiple
// application commands, e.g., run, plot.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sxprof/internal/report"
	"sxprof/internal/util"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	Timestamp   string // Timestamp is the application start time, used in default output names.
	OutputDir   string // OutputDir is the directory where the application will write output files.
	LogFilePath string // LogFilePath is the application log, empty when logging elsewhere.
	ConfigFile  string // ConfigFile is the --config value, empty to search for the default file.
	Version     string // Version is the version of the application.
	Debug       bool
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

var (
	FlagFormat []string
)

const (
	FlagFormatName = "format"
)

// GetAppContext returns the context set up by the root command.
func GetAppContext(cmd *cobra.Command) AppContext {
	for c := cmd; c != nil; c = c.Parent() {
		if ctx := c.Context(); ctx != nil {
			if appContext, ok := ctx.Value(AppContext{}).(AppContext); ok {
				return appContext
			}
		}
	}
	return AppContext{}
}

// UsageFunc prints the flags of a command grouped as getFlagGroups returns them.
func UsageFunc(getFlagGroups func() []FlagGroup) func(*cobra.Command) error {
	return func(cmd *cobra.Command) error {
		cmd.Printf("Usage: %s\n\n", cmd.UseLine())
		if cmd.Example != "" {
			cmd.Printf("Examples:\n%s\n\n", cmd.Example)
		}
		cmd.Println("Flags:")
		for _, group := range getFlagGroups() {
			cmd.Printf("  %s:\n", group.GroupName)
			for _, flag := range group.Flags {
				f := cmd.Flags().Lookup(flag.Name)
				if f == nil {
					continue
				}
				name := "--" + flag.Name
				if f.Shorthand != "" {
					name = "-" + f.Shorthand + ", " + name
				}
				flagDefault := ""
				if f.DefValue != "" && f.DefValue != "[]" {
					flagDefault = fmt.Sprintf(" (default: %s)", f.DefValue)
				}
				cmd.Printf("    %-26s %s%s\n", name, flag.Help, flagDefault)
			}
		}
		if cmd.HasParent() {
			cmd.Println("\nGlobal Flags:")
			cmd.Root().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
				flagDefault := ""
				if pf.DefValue != "" && pf.DefValue != "false" {
					flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
				}
				cmd.Printf("  --%-24s %s%s\n", pf.Name, pf.Usage, flagDefault)
			})
		}
		return nil
	}
}

// FormatFlag describes the --format flag of commands that write reports.
func FormatFlag() Flag {
	return Flag{
		Name: FlagFormatName,
		Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")),
	}
}

// CreateOutputDir creates the output directory if it does not exist
func CreateOutputDir(outputDir string) error {
	if err := util.CreateDirectoryIfNotExists(outputDir, 0755); err != nil { // #nosec G301
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// FlagValidationError is used to report an error with a flag
func FlagValidationError(cmd *cobra.Command, msg string) error {
	err := errors.New(msg)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	fmt.Fprintf(os.Stderr, "See '%s --help' for usage details.\n", cmd.CommandPath())
	cmd.SilenceUsage = true
	return err
}

// writeReport writes the report bytes to the specified path.
func writeReport(reportBytes []byte, reportPath string) error {
	err := os.WriteFile(reportPath, reportBytes, 0644) // #nosec G306
	if err != nil {
		err = fmt.Errorf("failed to write report file: %v", err)
		fmt.Fprintln(os.Stderr, err)
		slog.Error(err.Error())
		return err
	}
	return nil
}

// CreateReports renders data in each format and writes <baseName>.<format>
// to the output directory. It returns the paths written.
func CreateReports(appContext AppContext, baseName string, formats []string, data report.Data) ([]string, error) {
	if err := CreateOutputDir(appContext.OutputDir); err != nil {
		return nil, err
	}
	reportFilePaths := []string{}
	for _, format := range formats {
		reportBytes, err := report.Create(format, data)
		if err != nil {
			err = fmt.Errorf("failed to create %s report: %w", format, err)
			return reportFilePaths, err
		}
		reportPath := filepath.Join(appContext.OutputDir, fmt.Sprintf("%s.%s", baseName, format))
		if err = writeReport(reportBytes, reportPath); err != nil {
			err = fmt.Errorf("failed to write report: %w", err)
			return reportFilePaths, err
		}
		slog.Info("report written", slog.String("format", format), slog.String("path", reportPath))
		reportFilePaths = append(reportFilePaths, reportPath)
	}
	return reportFilePaths, nil
}

// PrintReportFiles lists the written reports the way every command does.
func PrintReportFiles(reportFilePaths []string) {
	if len(reportFilePaths) == 0 {
		return
	}
	fmt.Println("Report files:")
	for _, reportFilePath := range reportFilePaths {
		fmt.Printf("  %s\n", reportFilePath)
	}
}
