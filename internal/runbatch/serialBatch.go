// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

var _ Runnable = (*SerialBatch)(nil)

// SerialBatch runs its commands one after the other.
type SerialBatch struct {
	*BaseCommand
	Commands []Runnable
}

// NewSerialBatch creates a SerialBatch and sets itself as the parent of the commands.
func NewSerialBatch(base *BaseCommand, commands ...Runnable) *SerialBatch {
	b := &SerialBatch{BaseCommand: base, Commands: commands}
	for _, c := range commands {
		c.SetParent(b)
	}

	return b
}

// Run implements the Runnable interface for SerialBatch.
func (b *SerialBatch) Run(ctx context.Context) Results {
	ctx, scope := startScope(ctx, b)
	defer endScope(ctx, scope)

	logger := ctxLogger(ctx, "SerialBatch", scope.Name())

	results := make(Results, 0, len(b.Commands))
	prev := PreviousCommandStatus{State: ResultStatusSuccess}
	total := len(b.Commands)

	for i, cmd := range b.Commands {
		if err := ctx.Err(); err != nil {
			logger.Debug("context done, not starting remaining commands", "remaining", total-i)

			for _, rest := range b.Commands[i:] {
				results = append(results, cancelledResult(rest.GetLabel(), context.Cause(ctx)))
			}

			break
		}

		cmd.InheritEnv(b.Env)
		cmd.SetCwd(b.Cwd, false)

		switch cmd.ShouldRun(prev) {
		case ShouldRunActionSkip:
			results = append(results, &Result{Label: cmd.GetLabel(), Status: ResultStatusSkipped, Error: ErrSkipIntentional})
		case ShouldRunActionError:
			results = append(results, &Result{Label: cmd.GetLabel(), Status: ResultStatusSkipped, Error: ErrSkipOnError})
		default:
			child := cmd.Run(ctx)
			results = append(results, child...)

			if len(child) > 0 {
				prev = PreviousCommandStatus{State: child[0].Status, ExitCode: child[0].ExitCode, Err: child[0].Error}

				if newCwd := child[0].newCwd; newCwd != "" {
					logger.Debug("changing working directory for remaining commands", "cwd", newCwd)

					for _, rest := range b.Commands[i+1:] {
						rest.SetCwd(newCwd, true)
					}
				}
			}
		}

		reportProgress(ctx, i+1, total)
	}

	res := newBatchResult(b.Label, results)
	res.Duration = scope.Elapsed()

	if err := ctx.Err(); err != nil {
		res.Status = ResultStatusError
		res.ExitCode = -1
		res.Error = multierror.Append(res.Error, ErrCancelled, context.Cause(ctx))
	}

	return Results{res}
}
