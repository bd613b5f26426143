// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
)

// RunCondition defines when a command runs based on the result of the previous command.
type RunCondition int

const (
	// RunOnSuccess runs the command only if the previous command succeeded.
	RunOnSuccess RunCondition = iota
	// RunOnError runs the command only if the previous command failed.
	RunOnError
	// RunOnAlways runs the command regardless of the previous result.
	RunOnAlways
	// RunOnExitCodes runs the command only if the previous exit code is listed.
	RunOnExitCodes
)

const (
	runOnSuccessStr   = "success"
	runOnErrorStr     = "error"
	runOnAlwaysStr    = "always"
	runOnExitCodesStr = "exit-codes"
	runOnUnknownStr   = "unknown"
)

// ErrRunConditionUnknown is returned when an unknown run condition is parsed.
var ErrRunConditionUnknown = errors.New("unknown run condition")

// String returns the string representation of the RunCondition.
func (r RunCondition) String() string {
	switch r {
	case RunOnSuccess:
		return runOnSuccessStr
	case RunOnError:
		return runOnErrorStr
	case RunOnAlways:
		return runOnAlwaysStr
	case RunOnExitCodes:
		return runOnExitCodesStr
	default:
		return runOnUnknownStr
	}
}

// NewRunCondition parses a RunCondition. The empty string means RunOnSuccess.
func NewRunCondition(s string) (RunCondition, error) {
	switch s {
	case "", runOnSuccessStr:
		return RunOnSuccess, nil
	case runOnErrorStr:
		return RunOnError, nil
	case runOnAlwaysStr:
		return RunOnAlways, nil
	case runOnExitCodesStr:
		return RunOnExitCodes, nil
	default:
		return RunCondition(-1), fmt.Errorf("%w: %q", ErrRunConditionUnknown, s)
	}
}
