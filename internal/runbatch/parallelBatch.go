// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"slices"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

var _ Runnable = (*ParallelBatch)(nil)

// ParallelBatch runs its commands concurrently.
type ParallelBatch struct {
	*BaseCommand
	Commands    []Runnable
	MaxParallel int // Maximum number of commands running at once, zero or less means unlimited
}

// NewParallelBatch creates a ParallelBatch and sets itself as the parent of the commands.
func NewParallelBatch(base *BaseCommand, maxParallel int, commands ...Runnable) *ParallelBatch {
	b := &ParallelBatch{BaseCommand: base, Commands: commands, MaxParallel: maxParallel}
	for _, c := range commands {
		c.SetParent(b)
	}

	return b
}

type indexedResults struct {
	i   int
	res Results
}

// Run implements the Runnable interface for ParallelBatch.
// Each command runs in a context forked from the batch scope. The calling
// goroutine reports how many commands have completed.
func (b *ParallelBatch) Run(ctx context.Context) Results {
	ctx, scope := startScope(ctx, b)
	defer endScope(ctx, scope)

	logger := ctxLogger(ctx, "ParallelBatch", scope.Name())

	for _, cmd := range b.Commands {
		cmd.InheritEnv(b.Env)
		cmd.SetCwd(b.Cwd, false)
	}

	g := &errgroup.Group{}
	if b.MaxParallel > 0 {
		g.SetLimit(b.MaxParallel)
	}

	logger.Debug("starting commands", "count", len(b.Commands), "maxParallel", b.MaxParallel)

	resCh := make(chan indexedResults, len(b.Commands))

	go func() {
		defer close(resCh)

		for i, cmd := range b.Commands {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					resCh <- indexedResults{i: i, res: Results{cancelledResult(cmd.GetLabel(), context.Cause(ctx))}}
					return nil
				}

				resCh <- indexedResults{i: i, res: cmd.Run(ctx)}

				return nil
			})
		}

		_ = g.Wait()
	}()

	ordered := make([]Results, len(b.Commands))
	done := 0

	for r := range resCh {
		ordered[r.i] = r.res
		done++
		reportProgress(ctx, done, len(b.Commands))
	}

	res := newBatchResult(b.Label, slices.Concat(ordered...))
	res.Duration = scope.Elapsed()

	if err := ctx.Err(); err != nil {
		res.Status = ResultStatusError
		res.ExitCode = -1
		res.Error = multierror.Append(res.Error, ErrCancelled, context.Cause(ctx))
	}

	return Results{res}
}
