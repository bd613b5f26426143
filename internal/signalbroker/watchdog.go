// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/stint/internal/ctxlog"
)

// ExitCodeInterrupted is the exit code used when a second signal forces termination.
const ExitCodeInterrupted = 130

var exitFunc = os.Exit

// Watch cancels the run on the first signal. A second signal of the same type
// terminates the process. Watch returns when sigCh is closed.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Warn(ctx, "watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
			exitFunc(ExitCodeInterrupted)

			return
		}

		seen[sig] = struct{}{}

		ctxlog.Warn(ctx, "watchdog", "detail", "received signal, cancelling run", "signal", sig.String())
		cancel()
	}
}
