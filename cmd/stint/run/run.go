// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run subcommand.
package run

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/stint/internal/cmdflags"
	"github.com/matt-FFFFFF/stint/internal/config"
	"github.com/matt-FFFFFF/stint/internal/ctxlog"
	"github.com/matt-FFFFFF/stint/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const (
	fileArg                  = "file"
	noOutputStdErrFlag       = "no-output-stderr"
	outputStdOutFlag         = "output-stdout"
	outputSuccessDetailsFlag = "output-success-details"
	cliExitStr               = ""
)

const description = `Run the workflow defined in a YAML or HCL file and print a summary of the results.
The format is chosen by the file extension: .yaml, .yml or .hcl.

The file location uses Hashicorp's go-getter syntax, which allows for fetching files from various sources.
See https://github.com/hashicorp/go-getter.
`

// NewCommand returns the run command, which runs the workflow defined in a YAML or HCL file.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:        "run",
		Usage:       "Run a workflow",
		Description: description,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      fileArg,
				UsageText: "FILE|URL",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:     outputSuccessDetailsFlag,
				Aliases:  []string{"success"},
				Usage:    "Include successful results in the output",
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     noOutputStdErrFlag,
				Aliases:  []string{"no-stderr"},
				Usage:    "Exclude stderr output in the results",
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     outputStdOutFlag,
				Aliases:  []string{"stdout"},
				Usage:    "Include stdout output in the results",
				OnlyOnce: true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	src := cmd.StringArg(fileArg)
	if src == "" {
		logger.Error("Please provide the file or URL of the workflow to run.")
		return cli.Exit(cliExitStr, 1)
	}

	fileName, data, err := config.Fetch(ctx, src)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to get workflow %s: %s", src, err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	rb, err := config.NewFactory(cmd.Int(cmdflags.MaxParallel)).Build(ctx, fileName, data)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to build workflow from %s: %s", src, err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	res := rb.Run(ctx)

	opts := runbatch.DefaultOutputOptions()
	opts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)
	opts.IncludeStdOut = cmd.Bool(outputStdOutFlag)
	opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)

	if err := res.Write(cmd.Root().Writer, opts); err != nil {
		logger.Error(fmt.Sprintf("Failed to write results: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if res.HasError() {
		logger.Error("Some commands failed. See above for details.")
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}
