// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"

	"github.com/matt-FFFFFF/stint/internal/ctxlog"
	"github.com/matt-FFFFFF/stint/internal/progress"
)

// BaseCommand holds the fields shared by every runnable.
// It should be embedded in other command types.
type BaseCommand struct {
	Label           string            // Optional label for the command
	Cwd             string            // The working directory for the command
	RunsOnCondition RunCondition      // The condition under which the command runs
	RunsOnExitCodes []int             // Exit codes that trigger the command when RunsOnCondition is RunOnExitCodes
	Env             map[string]string // Environment variables to be passed to the command
	parent          Runnable
}

// NewBaseCommand creates a new BaseCommand.
func NewBaseCommand(label, cwd string, runsOn RunCondition, runOnExitCodes []int, env map[string]string) *BaseCommand {
	if runOnExitCodes == nil {
		runOnExitCodes = []int{0}
	}

	if env == nil {
		env = make(map[string]string)
	}

	return &BaseCommand{
		Label:           label,
		Cwd:             cwd,
		RunsOnCondition: runsOn,
		RunsOnExitCodes: runOnExitCodes,
		Env:             env,
	}
}

// GetLabel returns the label of the command.
func (c *BaseCommand) GetLabel() string {
	if c.Label == "" {
		return "Command"
	}

	return c.Label
}

// GetParent returns the parent for this command or batch.
func (c *BaseCommand) GetParent() Runnable {
	return c.parent
}

// SetParent sets the parent for this command or batch.
func (c *BaseCommand) SetParent(parent Runnable) {
	c.parent = parent
}

// SetCwd sets the working directory of the command.
func (c *BaseCommand) SetCwd(cwd string, overwrite bool) {
	switch {
	case cwd == "":
		return
	case overwrite || c.Cwd == "":
		c.Cwd = cwd
	case !filepath.IsAbs(c.Cwd):
		c.Cwd = filepath.Join(cwd, c.Cwd)
	}
}

// InheritEnv adds the variables from env that the command does not already set.
func (c *BaseCommand) InheritEnv(env map[string]string) {
	if len(c.Env) == 0 {
		c.Env = maps.Clone(env)
		return
	}

	for k, v := range env {
		if _, ok := c.Env[k]; !ok {
			c.Env[k] = v
		}
	}
}

// ShouldRun checks the run condition against the previous command.
func (c *BaseCommand) ShouldRun(prev PreviousCommandStatus) ShouldRunAction {
	switch c.RunsOnCondition {
	case RunOnAlways:
		return ShouldRunActionRun
	case RunOnSuccess:
		if prev.State != ResultStatusSuccess {
			return ShouldRunActionError
		}

		if errors.Is(prev.Err, ErrSkipIntentional) {
			return ShouldRunActionSkip
		}

		return ShouldRunActionRun
	case RunOnExitCodes:
		if !slices.Contains(c.RunsOnExitCodes, prev.ExitCode) {
			return ShouldRunActionSkip
		}

		return ShouldRunActionRun
	case RunOnError:
		if prev.State != ResultStatusError {
			return ShouldRunActionSkip
		}

		return ShouldRunActionRun
	}

	return ShouldRunActionRun
}

// startScope opens the progress scope that covers a runnable's Run.
func startScope(ctx context.Context, r Runnable) (context.Context, *progress.Scope) {
	return progress.Start(ctx, FullLabel(r))
}

// endScope closes a runnable's progress scope. Output errors are logged, not returned,
// since they do not change the outcome of the command.
func endScope(ctx context.Context, scope *progress.Scope) {
	if err := scope.End(); err != nil {
		ctxlog.Warn(ctx, "progress output failed", "scope", scope.Name(), "error", err)
	}
}

func reportProgress(ctx context.Context, done, total int) {
	if err := progress.Update(ctx, done, total); err != nil {
		ctxlog.Warn(ctx, "progress output failed", "error", err)
	}
}

func ctxLogger(ctx context.Context, runnableType, label string) *slog.Logger {
	return ctxlog.Logger(ctx).With("runnableType", runnableType, "label", label)
}
