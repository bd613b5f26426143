// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/matt-FFFFFF/stint/internal/cmdflags"
	"github.com/matt-FFFFFF/stint/internal/ctxlog"
	"github.com/matt-FFFFFF/stint/internal/progress"
	"github.com/urfave/cli/v3"
)

const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// newRootCmd returns the root command with the global flags and the given subcommands.
func newRootCmd(commands ...*cli.Command) *cli.Command {
	return &cli.Command{
		Commands:  commands,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "stint",
		Description: `Stint runs workflows of shell commands, batches and built in tasks,
reporting nested progress for every step that takes a while.
Workflows are defined in YAML or HCL and can be fetched from anywhere go-getter supports.`,
		Usage:     "stint run workflow.yaml",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    cmdflags.Verbose,
				Aliases: []string{"v"},
				Usage:   "Report the start and end of every step and log at debug level",
				Sources: cli.EnvVars("STINT_VERBOSE"),
			},
			&cli.StringFlag{
				Name:    cmdflags.LogFormat,
				Usage:   "Log format, either text or json",
				Value:   logFormatText,
				Sources: cli.EnvVars("STINT_LOG_FORMAT"),
				Validator: func(s string) error {
					if s != logFormatText && s != logFormatJSON {
						return fmt.Errorf("unsupported log format %q", s)
					}

					return nil
				},
			},
			&cli.IntFlag{
				Name:    cmdflags.MaxParallel,
				Aliases: []string{"p"},
				Usage: "Set the maximum number of concurrent commands to run. " +
					"Zero means no limit.",
				Sources: cli.EnvVars("STINT_MAX_PARALLEL"),
			},
		},
		Before: setup,
	}
}

// setup installs the logger and the progress reporter into the context used by every subcommand.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logger := ctxlog.DefaultLogger
	if cmd.String(cmdflags.LogFormat) == logFormatJSON {
		logger = ctxlog.JSONLogger
	}

	if cmd.Bool(cmdflags.Verbose) {
		ctxlog.LevelVar.Set(slog.LevelDebug)
	}

	ctx = ctxlog.New(ctx, logger)

	sink := progress.NewSink(cmd.ErrWriter)
	ctxlog.Debug(ctx, "progress output", "interactive", sink.Interactive())

	return progress.WithReporter(ctx, progress.NewReporter(progress.WithSink(sink))), nil
}
