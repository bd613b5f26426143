// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scan implements the scan subcommand.
package scan

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/stint/internal/ctxlog"
	"github.com/matt-FFFFFF/stint/internal/scan"
	"github.com/urfave/cli/v3"
)

const (
	dirArg      = "dir"
	workersFlag = "workers"
	cliExitStr  = ""
)

const description = `Walk a directory, hash every regular file and print the file count,
the total size and a digest of the whole tree. The digest only changes
when a file is added, removed, renamed or modified.`

// NewCommand returns the scan command, which indexes and hashes a directory tree.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:        "scan",
		Usage:       "Index and hash a directory",
		Description: description,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      dirArg,
				UsageText: "DIR",
				Value:     ".",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    workersFlag,
				Aliases: []string{"w"},
				Usage:   "Number of files hashed at once. Defaults to the number of CPU cores available.",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg(dirArg)

	sum, err := scan.Run(ctx, dir, scan.Options{Workers: cmd.Int(workersFlag)})
	if err != nil {
		ctxlog.Error(ctx, fmt.Sprintf("Failed to scan %s: %s", dir, err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if _, err := fmt.Fprintln(cmd.Root().Writer, sum.String()); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return nil
}
