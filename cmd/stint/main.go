// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the stint command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/stint"
	"github.com/matt-FFFFFF/stint/cmd/stint/run"
	"github.com/matt-FFFFFF/stint/cmd/stint/scan"
	"github.com/matt-FFFFFF/stint/internal/ctxlog"
	"github.com/matt-FFFFFF/stint/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	root := newRootCmd(run.NewCommand(), scan.NewCommand())
	root.Version = fmt.Sprintf("%s (commit: %s)", stint.Version, stint.Commit)

	err := root.Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Error(ctx, "command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1) //nolint:gocritic
	}

	if err != nil {
		ctxlog.Error(ctx, "command execution failed", "error", err)
		os.Exit(1)
	}
}
