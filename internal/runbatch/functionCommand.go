// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
)

var _ Runnable = (*FunctionCommand)(nil)

var (
	// ErrSkipIntentional is returned to intentionally skip the remaining batch execution.
	ErrSkipIntentional = errors.New("intentionally skip execution")
	// ErrSkipOnError is the error of a command skipped because of an earlier error.
	ErrSkipOnError = errors.New("skip execution due to previous error")
)

// ErrFunctionCmdPanic is the error returned when a function command panics.
// It holds the value that caused the panic.
type ErrFunctionCmdPanic struct {
	v any
}

// NewErrFunctionCmdPanic creates a new ErrFunctionCmdPanic with the given value.
func NewErrFunctionCmdPanic(v any) error {
	return &ErrFunctionCmdPanic{v: v}
}

// Error implements the error interface for ErrFunctionCmdPanic.
func (e *ErrFunctionCmdPanic) Error() string {
	return fmt.Sprintf("function command panic: %v", e.v)
}

// Unwrap returns the panic value if it was an error.
func (e *ErrFunctionCmdPanic) Unwrap() error {
	err, _ := e.v.(error)
	return err
}

// FunctionCommandFunc is the function run by a FunctionCommand.
// It receives the working directory of the command. Progress can be reported
// with progress.Update on ctx, whose top scope belongs to the command.
type FunctionCommandFunc func(ctx context.Context, workingDirectory string) FunctionCommandReturn

// FunctionCommandReturn is the return type of a FunctionCommandFunc.
type FunctionCommandReturn struct {
	NewCwd string // The new working directory for the remaining commands of a serial batch
	Err    error
}

// FunctionCommand runs a Go function.
type FunctionCommand struct {
	*BaseCommand
	Func FunctionCommandFunc
}

// Run implements the Runnable interface for FunctionCommand.
// A panic in the function is recovered and returned as ErrFunctionCmdPanic.
func (f *FunctionCommand) Run(ctx context.Context) Results {
	ctx, scope := startScope(ctx, f)
	defer endScope(ctx, scope)

	logger := ctxLogger(ctx, "FunctionCommand", scope.Name())

	res := &Result{Label: f.Label, Status: ResultStatusSuccess}

	if f.Func == nil {
		logger.Debug("no function to run, returning success")
		return Results{res}
	}

	fr := f.call(ctx)
	res.Duration = scope.Elapsed()

	logger.Debug("function command completed", "error", fr.Err, "newCwd", fr.NewCwd)

	switch {
	case fr.Err == nil:
		res.newCwd = fr.NewCwd
	case errors.Is(fr.Err, ErrSkipIntentional):
		res.Error = fr.Err
	default:
		res.Status = ResultStatusError
		res.ExitCode = -1
		res.Error = fr.Err
	}

	return Results{res}
}

func (f *FunctionCommand) call(ctx context.Context) (fr FunctionCommandReturn) {
	defer func() {
		if r := recover(); r != nil {
			ctxLogger(ctx, "FunctionCommand", FullLabel(f)).Error("function command panicked", "panic", r)

			fr = FunctionCommandReturn{Err: NewErrFunctionCmdPanic(r)}
		}
	}()

	return f.Func(ctx, f.Cwd)
}
