// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
)

// Runnable is something that can be run as part of a batch (either a command or a nested batch).
type Runnable interface {
	// Run executes the command or batch and returns the results.
	// It must return when ctx is cancelled.
	Run(context.Context) Results
	// SetCwd sets the working directory. With overwrite false, an absolute
	// working directory is kept and a relative one is resolved against cwd.
	SetCwd(cwd string, overwrite bool)
	// InheritEnv adds environment variables that are not already set.
	InheritEnv(map[string]string)
	// GetLabel returns the label of the command or batch.
	GetLabel() string
	// GetParent returns the parent batch, if any.
	GetParent() Runnable
	// SetParent sets the parent batch.
	SetParent(Runnable)
	// ShouldRun decides whether to run given the status of the previous command.
	ShouldRun(prev PreviousCommandStatus) ShouldRunAction
}

// PreviousCommandStatus holds the state of the previous command execution.
type PreviousCommandStatus struct {
	State    ResultStatus
	ExitCode int
	Err      error
}
