// Package plot is a subcommand of the root command. It plots the resource usage of a
// sourcextractor++ run against the milestones found in its log.
package plot

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sxprof/internal/chart"
	"sxprof/internal/common"
	"sxprof/internal/report"
	"sxprof/internal/runner"
	"sxprof/internal/server"
	"sxprof/internal/util"
)

const cmdName = "plot"

var examples = []string{
	fmt.Sprintf("  Plot CPU and memory:                 $ %s %s -s pidstat.log -l sourcextractor.log", common.AppName, cmdName),
	fmt.Sprintf("  Plot sources against read activity:  $ %s %s --left sources --right io", common.AppName, cmdName),
	fmt.Sprintf("  Plot the outputs of a recorded run:  $ %s %s --manifest sxprof_2020-06-10_15-22-05/run.json", common.AppName, cmdName),
	fmt.Sprintf("  Create every report format:          $ %s %s --format all", common.AppName, cmdName),
	fmt.Sprintf("  Browse the reports:                  $ %s %s --serve localhost:8080", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Plot resource usage against the milestones of a run",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagPidstat  string
	flagLog      string
	flagManifest string
	flagNCores   float64
	flagTitle    string
	flagLeft     string
	flagRight    string
	flagFormat   []string
	flagServe    string
)

const (
	flagPidstatName  = "pidstat"
	flagLogName      = "log"
	flagManifestName = "manifest"
	flagNCoresName   = "n-cores"
	flagTitleName    = "title"
	flagLeftName     = "left"
	flagRightName    = "right"
	flagServeName    = "serve"
)

func init() {
	addFlags(Cmd)
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagPidstat, flagPidstatName, "s", "pidstat.log", "")
	cmd.Flags().StringVarP(&flagLog, flagLogName, "l", "sourcextractor.log", "")
	cmd.Flags().StringVar(&flagManifest, flagManifestName, "", "")
	cmd.Flags().Float64VarP(&flagNCores, flagNCoresName, "n", 0, "")
	cmd.Flags().StringVarP(&flagTitle, flagTitleName, "t", "", "")
	cmd.Flags().StringVar(&flagLeft, flagLeftName, chart.SeriesCPU.String(), "")
	cmd.Flags().StringVar(&flagRight, flagRightName, "", "")
	cmd.Flags().StringSliceVar(&flagFormat, common.FlagFormatName, []string{report.FormatHtml}, "")
	cmd.Flags().StringVar(&flagServe, flagServeName, "", "")
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	groups = append(groups, common.FlagGroup{
		GroupName: "Input Options",
		Flags: []common.Flag{
			{
				Name: flagPidstatName,
				Help: "sampler output, as written by pidstat -hIdur",
			},
			{
				Name: flagLogName,
				Help: "sourcextractor++ log",
			},
			{
				Name: flagManifestName,
				Help: fmt.Sprintf("take the sampler output and log of a recorded run from its %s", runner.ManifestFileName),
			},
		},
	})
	groups = append(groups, common.FlagGroup{
		GroupName: "Plot Options",
		Flags: []common.Flag{
			{
				Name: flagLeftName,
				Help: fmt.Sprintf("series on the left axis, one of: %s", strings.Join(chart.SeriesNames(), ", ")),
			},
			{
				Name: flagRightName,
				Help: fmt.Sprintf("series on the right axis, or '%s'; memory or io when sampled if not specified", common.RightAxisNone),
			},
			{
				Name: flagNCoresName,
				Help: "number of cores on the machine, scales %CPU; twice the log's thread-count if not specified",
			},
			{
				Name: flagTitleName,
				Help: "plot title; the log file name if not specified",
			},
		},
	})
	groups = append(groups, common.FlagGroup{
		GroupName: "Output Options",
		Flags: []common.Flag{
			common.FormatFlag(),
			{
				Name: flagServeName,
				Help: "serve the reports over HTTP on this address until interrupted",
			},
		},
	})
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagManifest == "" {
		for _, path := range []string{flagPidstat, flagLog} {
			exists, err := util.FileExists(path)
			if err != nil {
				return common.FlagValidationError(cmd, err.Error())
			}
			if !exists {
				return common.FlagValidationError(cmd, fmt.Sprintf("file not found: %s", path))
			}
		}
	} else if cmd.Flags().Changed(flagPidstatName) || cmd.Flags().Changed(flagLogName) {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s cannot be combined with --%s or --%s", flagManifestName, flagPidstatName, flagLogName))
	}
	if flagNCores < 0 {
		return common.FlagValidationError(cmd, fmt.Sprintf("%s must not be negative", flagNCoresName))
	}
	if _, err := chart.ParseSeries(flagLeft); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	if flagRight != "" && flagRight != common.RightAxisNone {
		if _, err := chart.ParseSeries(flagRight); err != nil {
			return common.FlagValidationError(cmd, err.Error())
		}
	}
	if _, err := report.Formats(flagFormat); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := common.GetAppContext(cmd)
	logPath, pidstatPath := flagLog, flagPidstat
	if flagManifest != "" {
		manifest, err := runner.ReadManifest(flagManifest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			cmd.SilenceUsage = true
			return err
		}
		logPath, pidstatPath = manifest.Log, manifest.Pidstat
		slog.Info("plotting recorded run", slog.String("run_id", manifest.RunID))
	}
	data, err := common.LoadReportData(common.ReportInput{
		LogPath:     logPath,
		PidstatPath: pidstatPath,
		NCores:      flagNCores,
		Title:       flagTitle,
		Left:        flagLeft,
		Right:       flagRight,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error("failed to load run outputs", slog.String("error", err.Error()))
		cmd.SilenceUsage = true
		return err
	}
	formats, err := report.Formats(flagFormat)
	if err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	fmt.Print(report.TerminalSummary(data))
	baseName := strings.TrimSuffix(filepath.Base(logPath), filepath.Ext(logPath))
	reportFilePaths, err := common.CreateReports(appContext, baseName, formats, data)
	common.PrintReportFiles(reportFilePaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cmd.SilenceUsage = true
		return err
	}
	if flagServe != "" {
		fmt.Printf("Serving reports on http://%s/ (interrupt to stop)\n", flagServe)
		if err := server.New(data, slog.Default()).ListenAndServe(cmd.Context(), flagServe); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error("report server failed", slog.String("error", err.Error()))
			cmd.SilenceUsage = true
			return err
		}
	}
	return nil
}
