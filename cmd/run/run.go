// Package run is a subcommand of the root command. It runs sourcextractor++ with a
// resource sampler attached to it.
package run

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"sxprof/internal/common"
	"sxprof/internal/report"
	"sxprof/internal/runner"
	"sxprof/internal/util"
)

const cmdName = "run"

var examples = []string{
	fmt.Sprintf("  Run the highest installed version:   $ %s %s -p /opt/sx -b x86_64-el8-gcc -- --config-file sx.config", common.AppName, cmdName),
	fmt.Sprintf("  Run a given version every second:    $ %s %s -u 0.19 -i 1 -- --config-file sx.config", common.AppName, cmdName),
	fmt.Sprintf("  Run and plot when finished:          $ %s %s --plot --format html,png -- --config-file sx.config", common.AppName, cmdName),
	fmt.Sprintf("  Expose live metrics to Prometheus:   $ %s %s --prometheus-server-addr :9090 -- --config-file sx.config", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " [flags] -- [sourcextractor++ arguments]",
	Short:         "Run sourcextractor++ with a resource sampler attached",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
}

var (
	flagVersion     string
	flagProjectArea string
	flagBinaryTag   string
	flagPidstat     string
	flagLog         string
	flagInterval    int
	flagSampler     string
	flagPromAddr    string
	flagPlot        bool
	flagFormat      []string
)

const (
	flagVersionName     = "use-version"
	flagProjectAreaName = "project-area"
	flagBinaryTagName   = "binary-tag"
	flagPidstatName     = "pidstat"
	flagLogName         = "log"
	flagIntervalName    = "interval"
	flagSamplerName     = "sampler"
	flagPromAddrName    = "prometheus-server-addr"
	flagPlotName        = "plot"
)

func defaultProjectArea() string {
	if root := os.Getenv("CMAKE_PROJECT_PATH"); root != "" {
		return filepath.Join(root, "SourceXtractorPlusPlus")
	}
	return ""
}

func init() {
	addFlags(Cmd)
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagVersion, flagVersionName, "u", "", "")
	cmd.Flags().StringVarP(&flagProjectArea, flagProjectAreaName, "p", defaultProjectArea(), "")
	cmd.Flags().StringVarP(&flagBinaryTag, flagBinaryTagName, "b", os.Getenv("BINARY_TAG"), "")
	cmd.Flags().StringVar(&flagPidstat, flagPidstatName, "pidstat.log", "")
	cmd.Flags().StringVar(&flagLog, flagLogName, "sourcextractor.log", "")
	cmd.Flags().IntVarP(&flagInterval, flagIntervalName, "i", 5, "")
	cmd.Flags().StringVar(&flagSampler, flagSamplerName, runner.DefaultSampler, "")
	cmd.Flags().StringVar(&flagPromAddr, flagPromAddrName, "", "")
	cmd.Flags().BoolVar(&flagPlot, flagPlotName, false, "")
	cmd.Flags().StringSliceVar(&flagFormat, common.FlagFormatName, []string{report.FormatHtml}, "")
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	groups = append(groups, common.FlagGroup{
		GroupName: "Binary Options",
		Flags: []common.Flag{
			{
				Name: flagProjectAreaName,
				Help: "location of the SourceXtractor++ project area",
			},
			{
				Name: flagVersionName,
				Help: "SourceXtractor++ version, the highest found is used if not specified",
			},
			{
				Name: flagBinaryTagName,
				Help: "binary tag of the build",
			},
		},
	})
	groups = append(groups, common.FlagGroup{
		GroupName: "Sampling Options",
		Flags: []common.Flag{
			{
				Name: flagIntervalName,
				Help: "sampling interval in seconds",
			},
			{
				Name: flagPidstatName,
				Help: "sampler output will be written here",
			},
			{
				Name: flagLogName,
				Help: "sourcextractor++ log will be written here",
			},
			{
				Name: flagSamplerName,
				Help: "pidstat compatible sampler executable",
			},
			{
				Name: flagPromAddrName,
				Help: "serve live metrics for Prometheus on this address during the run",
			},
		},
	})
	groups = append(groups, common.FlagGroup{
		GroupName: "Output Options",
		Flags: []common.Flag{
			{
				Name: flagPlotName,
				Help: "create reports from the run outputs when the run finishes",
			},
			common.FormatFlag(),
		},
	})
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagInterval <= 0 {
		return common.FlagValidationError(cmd, fmt.Sprintf("%s must be greater than 0", flagIntervalName))
	}
	if flagPidstat == "" || flagLog == "" {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s and --%s must not be empty", flagPidstatName, flagLogName))
	}
	if filepath.Clean(flagPidstat) == filepath.Clean(flagLog) {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s and --%s must be different files", flagPidstatName, flagLogName))
	}
	if _, err := report.Formats(flagFormat); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := common.GetAppContext(cmd)
	ctx := cmd.Context()
	binary, err := runner.FindBinary(ctx, util.ExpandUser(flagProjectArea), flagBinaryTag, flagVersion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not find %s: %v\n", runner.BinaryName, err)
		slog.Error("could not find binary", slog.String("error", err.Error()))
		cmd.SilenceUsage = true
		return err
	}
	fmt.Printf("Using %s\n", binary.Path)
	if err := common.CreateOutputDir(appContext.OutputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cmd.SilenceUsage = true
		return err
	}
	pidstatPath, err := util.AbsPath(flagPidstat)
	if err != nil {
		return err
	}
	logPath, err := util.AbsPath(flagLog)
	if err != nil {
		return err
	}
	manifest, runErr := runner.Run(ctx, runner.Options{
		Binary:      binary,
		Args:        args,
		PidstatPath: pidstatPath,
		LogPath:     logPath,
		Interval:    flagInterval,
		Sampler:     flagSampler,
		MetricsAddr: flagPromAddr,
		ManifestDir: appContext.OutputDir,
		Progress:    true,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Logger:      slog.Default(),
	})
	if manifest != nil {
		fmt.Printf("Run %s finished with exit code %d\n", manifest.RunID, manifest.ExitCode)
		fmt.Printf("Run manifest: %s\n", filepath.Join(appContext.OutputDir, runner.ManifestFileName))
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		slog.Error("run failed", slog.String("error", runErr.Error()))
		cmd.SilenceUsage = true
		var exitErr *runner.ExitError
		// a failed binary still leaves outputs worth plotting
		if !errors.As(runErr, &exitErr) {
			return runErr
		}
	}
	if flagPlot {
		if err := plotRun(appContext, logPath, pidstatPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error("failed to plot run", slog.String("error", err.Error()))
			cmd.SilenceUsage = true
			return err
		}
	}
	return runErr
}

func plotRun(appContext common.AppContext, logPath, pidstatPath string) error {
	formats, err := report.Formats(flagFormat)
	if err != nil {
		return err
	}
	data, err := common.LoadReportData(common.ReportInput{
		LogPath:     logPath,
		PidstatPath: pidstatPath,
		Left:        "cpu",
	})
	if err != nil {
		return err
	}
	reportFilePaths, err := common.CreateReports(appContext, strings.TrimSuffix(filepath.Base(logPath), filepath.Ext(logPath)), formats, data)
	common.PrintReportFiles(reportFilePaths)
	return err
}
