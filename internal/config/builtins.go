// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/matt-FFFFFF/stint/internal/ctxlog"
	"github.com/matt-FFFFFF/stint/internal/items"
	"github.com/matt-FFFFFF/stint/internal/progress"
	"github.com/matt-FFFFFF/stint/internal/runbatch"
	"github.com/matt-FFFFFF/stint/internal/scan"
	"github.com/matt-FFFFFF/stint/internal/workspace"
)

const (
	typeShell    = "shell"
	typeSerial   = "serial"
	typeParallel = "parallel"
	typeForEach  = "foreach"
	typeSleep    = "sleep"
	typeScan     = "scan"
	typeExec     = "exec"
	typeCopy     = "copy_to_temp"

	modeSerial   = "serial"
	modeParallel = "parallel"

	itemsFromList        = "list"
	itemsFromFiles       = "files"
	itemsFromDirectories = "directories"
	itemsFromSplit       = "split"
	defaultDelimiter     = ","

	defaultSleepSteps = 10
)

const (
	goosWindows          = "windows"
	commandSwitchWindows = "/C"
	commandSwitchUnix    = "-c"
	winSystem32          = "System32"
	cmdExe               = "cmd.exe"
	binSh                = "/bin/sh"
	winSystemRootEnv     = "SystemRoot"
	shellEnv             = "SHELL"
)

var (
	// ErrInvalidDuration is returned when a sleep duration cannot be parsed or is negative.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidMode is returned when a foreach mode is neither serial nor parallel.
	ErrInvalidMode = errors.New("invalid foreach mode")
	// ErrInvalidItemsSource is returned when items_from names an unknown source.
	ErrInvalidItemsSource = errors.New("invalid foreach items source")
	// ErrCommandNotFound is returned when an executable cannot be found in PATH.
	ErrCommandNotFound = errors.New("command not found")
)

func buildShell(ctx context.Context, _ *Factory, def *Command) (runbatch.Runnable, error) {
	if def.CommandLine == "" {
		return nil, fmt.Errorf("%w: command_line", ErrMissingField)
	}

	base, err := newBase(def)
	if err != nil {
		return nil, err
	}

	switchArg := commandSwitchUnix
	if runtime.GOOS == goosWindows {
		switchArg = commandSwitchWindows
	}

	return &runbatch.OSCommand{
		BaseCommand:      base,
		Path:             defaultShell(ctx),
		Args:             []string{switchArg, def.CommandLine},
		SuccessExitCodes: def.SuccessExitCodes,
		SkipExitCodes:    def.SkipExitCodes,
	}, nil
}

func defaultShell(ctx context.Context) string {
	if runtime.GOOS == goosWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	if shell := os.Getenv(shellEnv); shell != "" {
		ctxlog.Debug(ctx, "using SHELL environment variable", "shell", shell)
		return shell
	}

	return binSh
}

func buildSerial(ctx context.Context, f *Factory, def *Command) (runbatch.Runnable, error) {
	base, err := newBase(def)
	if err != nil {
		return nil, err
	}

	children, err := f.createAll(ctx, def.Commands)
	if err != nil {
		return nil, err
	}

	return runbatch.NewSerialBatch(base, children...), nil
}

func buildParallel(ctx context.Context, f *Factory, def *Command) (runbatch.Runnable, error) {
	base, err := newBase(def)
	if err != nil {
		return nil, err
	}

	children, err := f.createAll(ctx, def.Commands)
	if err != nil {
		return nil, err
	}

	return runbatch.NewParallelBatch(base, f.parallelLimit(def), children...), nil
}

func buildForEach(ctx context.Context, f *Factory, def *Command) (runbatch.Runnable, error) {
	var mode runbatch.ForEachMode

	switch def.Mode {
	case "", modeSerial:
		mode = runbatch.ForEachSerial
	case modeParallel:
		mode = runbatch.ForEachParallel
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, def.Mode)
	}

	base, err := newBase(def)
	if err != nil {
		return nil, err
	}

	children, err := f.createAll(ctx, def.Commands)
	if err != nil {
		return nil, err
	}

	provider, err := itemsProvider(def)
	if err != nil {
		return nil, err
	}

	fe := runbatch.NewForEachCommand(base, provider, mode, children...)
	fe.MaxParallel = f.parallelLimit(def)
	fe.ItemCwd = def.ItemCwd

	return fe, nil
}

func itemsProvider(def *Command) (runbatch.ItemsProviderFunc, error) {
	switch def.ItemsFrom {
	case "", itemsFromList:
		return runbatch.StaticItems(def.Items...), nil
	case itemsFromFiles:
		if def.Pattern == "" {
			return nil, fmt.Errorf("%w: pattern", ErrMissingField)
		}

		return items.Files(def.Pattern), nil
	case itemsFromDirectories:
		return items.Directories(def.Depth, items.IncludeHidden(def.IncludeHidden)), nil
	case itemsFromSplit:
		delim := def.Delimiter
		if delim == "" {
			delim = defaultDelimiter
		}

		return items.Split(def.Value, delim), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidItemsSource, def.ItemsFrom)
	}
}

func buildExec(_ context.Context, _ *Factory, def *Command) (runbatch.Runnable, error) {
	if def.Executable == "" {
		return nil, fmt.Errorf("%w: executable", ErrMissingField)
	}

	path, err := exec.LookPath(def.Executable)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommandNotFound, err)
	}

	base, err := newBase(def)
	if err != nil {
		return nil, err
	}

	return &runbatch.OSCommand{
		BaseCommand:      base,
		Path:             path,
		Args:             slices.Clone(def.Args),
		SuccessExitCodes: def.SuccessExitCodes,
		SkipExitCodes:    def.SkipExitCodes,
	}, nil
}

func buildCopyToTemp(_ context.Context, _ *Factory, def *Command) (runbatch.Runnable, error) {
	base, err := newBase(def)
	if err != nil {
		return nil, err
	}

	return &runbatch.FunctionCommand{
		BaseCommand: base,
		Func: func(ctx context.Context, cwd string) runbatch.FunctionCommandReturn {
			dst, err := workspace.CopyToTemp(ctx, cwd)
			if err != nil {
				return runbatch.FunctionCommandReturn{Err: err}
			}

			ctxlog.Debug(ctx, "copied working directory", "from", cwd, "to", dst)

			return runbatch.FunctionCommandReturn{NewCwd: dst}
		},
	}, nil
}

func buildSleep(_ context.Context, _ *Factory, def *Command) (runbatch.Runnable, error) {
	if def.Duration == "" {
		return nil, fmt.Errorf("%w: duration", ErrMissingField)
	}

	d, err := time.ParseDuration(def.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDuration, err)
	}

	if d < 0 {
		return nil, fmt.Errorf("%w: %s is negative", ErrInvalidDuration, def.Duration)
	}

	steps := def.Steps
	if steps <= 0 {
		steps = defaultSleepSteps
	}

	base, err := newBase(def)
	if err != nil {
		return nil, err
	}

	return &runbatch.FunctionCommand{
		BaseCommand: base,
		Func: func(ctx context.Context, _ string) runbatch.FunctionCommandReturn {
			return runbatch.FunctionCommandReturn{Err: sleep(ctx, d, steps)}
		},
	}, nil
}

// sleep waits for d in steps equal parts, updating the current scope after each one.
func sleep(ctx context.Context, d time.Duration, steps int) error {
	interval := d / time.Duration(steps)
	t := time.NewTimer(interval)

	defer t.Stop()

	for i := range steps {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck
		case <-t.C:
		}

		if err := progress.Update(ctx, i+1, steps); err != nil {
			ctxlog.Warn(ctx, "failed to write progress", "error", err)
		}

		t.Reset(interval)
	}

	return nil
}

func buildScan(_ context.Context, f *Factory, def *Command) (runbatch.Runnable, error) {
	base, err := newBase(def)
	if err != nil {
		return nil, err
	}

	workers := f.parallelLimit(def)

	path := def.Path
	if path == "" {
		path = "."
	}

	return &runbatch.FunctionCommand{
		BaseCommand: base,
		Func: func(ctx context.Context, cwd string) runbatch.FunctionCommandReturn {
			root := path

			if !filepath.IsAbs(root) && cwd != "" {
				root = filepath.Join(cwd, root)
			}

			sum, err := scan.Run(ctx, root, scan.Options{Workers: workers})
			if err != nil {
				return runbatch.FunctionCommandReturn{Err: err}
			}

			ctxlog.Info(ctx, "scan complete", "summary", sum.String())

			return runbatch.FunctionCommandReturn{}
		},
	}, nil
}
