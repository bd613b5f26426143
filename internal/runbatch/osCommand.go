// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"slices"
	"sort"
	"time"
)

const (
	maxBufferSize   = 8 * 1024 * 1024 // 8MB
	killGracePeriod = 10 * time.Second
)

var _ Runnable = (*OSCommand)(nil)

var (
	// ErrBufferOverflow is returned when the output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrUnexpectedExitCode is returned when the exit code is not a success or skip code.
	ErrUnexpectedExitCode = errors.New("unexpected exit code")
)

// OSCommand runs an executable.
type OSCommand struct {
	*BaseCommand
	Path             string   // The executable to run, looked up in PATH if it has no separator
	Args             []string // Arguments, not including the executable name
	SuccessExitCodes []int    // Exit codes that indicate success, defaults to 0
	SkipExitCodes    []int    // Exit codes that mean success and skip the remaining commands
}

// Run implements the Runnable interface for OSCommand.
// On cancellation the process is sent an interrupt and killed if it has not
// exited after a grace period.
func (c *OSCommand) Run(ctx context.Context) Results {
	ctx, scope := startScope(ctx, c)
	defer endScope(ctx, scope)

	logger := ctxLogger(ctx, "OSCommand", scope.Name())
	logger.Debug("command info", "path", c.Path, "cwd", c.Cwd, "args", c.Args)

	successCodes := c.SuccessExitCodes
	if len(successCodes) == 0 {
		successCodes = []int{0}
	}

	res := &Result{Label: c.Label, Status: ResultStatusUnknown}

	stdout := &cappedBuffer{limit: maxBufferSize}
	stderr := &cappedBuffer{limit: maxBufferSize}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Cwd
	cmd.Env = slices.Concat(os.Environ(), envList(c.Env))
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = killGracePeriod

	if err := cmd.Start(); err != nil {
		logger.Debug("process could not start", "error", err)

		res.Status = ResultStatusError
		res.ExitCode = -1
		res.Error = errors.Join(ErrCouldNotStartProcess, err)
		res.Duration = scope.Elapsed()

		return Results{res}
	}

	logger.Debug("process started", "pid", cmd.Process.Pid)

	waitErr := cmd.Wait()

	res.Duration = scope.Elapsed()
	res.StdOut = stdout.Bytes()
	res.StdErr = stderr.Bytes()
	res.ExitCode = cmd.ProcessState.ExitCode()

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		res.Error = waitErr
	}

	if ctx.Err() != nil {
		res.Error = errors.Join(res.Error, ErrCancelled, context.Cause(ctx))
	}

	logger.Debug("process finished", "exitCode", res.ExitCode, "error", res.Error)

	switch {
	case res.Error == nil && slices.Contains(successCodes, res.ExitCode):
		res.Status = ResultStatusSuccess
	case res.Error == nil && slices.Contains(c.SkipExitCodes, res.ExitCode):
		logger.Debug("exit code requests skipping the remaining commands", "exitCode", res.ExitCode)

		res.Status = ResultStatusSuccess
		res.Error = ErrSkipIntentional
	default:
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}

		res.Status = ResultStatusError
		if res.Error == nil {
			res.Error = fmt.Errorf("%w: %d", ErrUnexpectedExitCode, res.ExitCode)
		}
	}

	if stdout.overflow || stderr.overflow {
		res.Error = errors.Join(res.Error, ErrBufferOverflow)
	}

	return Results{res}
}

func envList(env map[string]string) []string {
	keys := slices.Collect(maps.Keys(env))
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}

	return out
}

// cappedBuffer keeps the first limit bytes written to it and drops the rest.
type cappedBuffer struct {
	buf      []byte
	limit    int
	overflow bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	room := b.limit - len(b.buf)
	if len(p) > room {
		b.overflow = true
		p = p[:max(room, 0)]
	}

	b.buf = append(b.buf, p...)

	return n, nil
}

func (b *cappedBuffer) Bytes() []byte {
	return b.buf
}
