// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/nsbox/lib/cli"
	"github.com/bureau-foundation/nsbox/lib/version"
	"github.com/bureau-foundation/nsbox/sandbox"
)

func main() {
	if sandbox.IsInitStage() {
		sandbox.RunInit()
	}
	rootCommand(os.Stdout, cli.NewCommandLogger()).Main(os.Args[1:])
}

// checkFailedError reports failed checks through the exit code. The
// details have already been printed.
type checkFailedError struct {
	failures int
}

func (e *checkFailedError) Error() string {
	return fmt.Sprintf("%d check(s) failed", e.failures)
}

func (e *checkFailedError) ExitCode() int {
	return 1
}

func rootCommand(stdout io.Writer, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:        "nsbox-check",
		Description: "Diagnose nsbox sandboxes: host pre-flight checks and in-sandbox isolation probes.",
		Subcommands: []*cli.Command{
			validateCommand(stdout),
			probeCommand(stdout, logger),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(stdout, "nsbox-check %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

func validateCommand(stdout io.Writer) *cli.Command {
	var command string
	return &cli.Command{
		Name:    "validate",
		Summary: "Check that this host can create unprivileged sandboxes",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("validate", pflag.ContinueOnError)
			flagSet.StringVar(&command, "command", "", "also check that `NAME` resolves on PATH")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Check the host and that bash can be launched", Command: "nsbox-check validate --command bash"},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			validator := sandbox.NewValidator()
			validator.ValidateAll(sandbox.DetectCapabilities(), command)
			validator.PrintResults(stdout)
			if validator.HasErrors() {
				failures := 0
				for _, result := range validator.Results() {
					if !result.Passed {
						failures++
					}
				}
				return &checkFailedError{failures: failures}
			}
			return nil
		},
	}
}

func probeCommand(stdout io.Writer, logger *slog.Logger) *cli.Command {
	var (
		format   string
		category string
		launch   bool
	)
	return &cli.Command{
		Name:    "probe",
		Summary: "Report and check the isolation of the calling process",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("probe", pflag.ContinueOnError)
			flagSet.StringVar(&format, "format", sandbox.FormatText, "output format: text, json, yaml or cbor")
			flagSet.StringVar(&category, "category", "", "only run checks in this category (process, identity, privilege)")
			flagSet.BoolVar(&launch, "launch", false, "run the probe inside a new sandbox instead of in this process")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Probe from inside a sandbox", Command: "nsbox nsbox-check probe"},
			{Description: "Launch a sandbox and print its report as YAML", Command: "nsbox-check probe --launch --format yaml"},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			if launch {
				return launchProbe(stdout, logger, format, category)
			}
			return runProbe(stdout, format, category)
		},
	}
}

func runProbe(stdout io.Writer, format, category string) error {
	observation, err := sandbox.Observe()
	if err != nil {
		return err
	}
	report := sandbox.NewProbeRunner().Run(observation, category)
	if err := report.Encode(stdout, format); err != nil {
		return err
	}
	if report.HasFailures() {
		return &checkFailedError{failures: len(report.Results) - report.Passed()}
	}
	return nil
}

// launchProbe re-runs this binary's probe command as the command of a
// new sandbox. The child's exit code is returned as a sandbox.ExitError.
func launchProbe(stdout io.Writer, logger *slog.Logger, format, category string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own executable: %w", err)
	}
	launcher, err := sandbox.New(sandbox.Config{
		Stdout: stdout,
		Stderr: os.Stderr,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	command := []string{executable, "probe", "--format", format}
	if category != "" {
		command = append(command, "--category", category)
	}
	code, err := launcher.Run(command)
	if err != nil {
		logger.Error("probe sandbox setup failed", "error", err)
		return &sandbox.ExitError{Code: sandbox.ExitSetupFailure}
	}
	if code != 0 {
		return &sandbox.ExitError{Code: code}
	}
	return nil
}
