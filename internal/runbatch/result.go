// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrResultChildrenHasError is part of the error of a batch with failed children.
	ErrResultChildrenHasError = errors.New("result has children with errors")
	// ErrCancelled is part of the error of a runnable interrupted by context cancellation.
	ErrCancelled = errors.New("run cancelled")
)

// ResultStatus is the outcome of a runnable.
type ResultStatus int

const (
	// ResultStatusSuccess means the runnable succeeded.
	ResultStatusSuccess ResultStatus = iota
	// ResultStatusError means the runnable failed.
	ResultStatusError
	// ResultStatusSkipped means the runnable did not run.
	ResultStatusSkipped
	// ResultStatusUnknown means the outcome could not be determined.
	ResultStatusUnknown
)

// String returns the lower case name of the status.
func (s ResultStatus) String() string {
	switch s {
	case ResultStatusSuccess:
		return "success"
	case ResultStatusError:
		return "error"
	case ResultStatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is the outcome of running a command or batch.
type Result struct {
	Label    string
	Status   ResultStatus
	ExitCode int
	Error    error
	StdOut   []byte
	StdErr   []byte
	Duration time.Duration
	Children Results
	newCwd   string
}

// Results is a list of results.
type Results []*Result

// HasError reports whether any result in the tree failed. Skipped results do not count.
func (r Results) HasError() bool {
	for _, v := range r {
		if v.Status == ResultStatusError || v.Children.HasError() {
			return true
		}
	}

	return false
}

// Print writes the results tree to stdout with default options.
func (r Results) Print() error {
	return WriteResults(os.Stdout, r, nil)
}

// Write writes the results tree to w with the given options, nil meaning defaults.
func (r Results) Write(w io.Writer, options *OutputOptions) error {
	return WriteResults(w, r, options)
}

// newBatchResult builds the result of a batch from its children.
// The error combines ErrResultChildrenHasError with the errors of the failed children.
func newBatchResult(label string, children Results) *Result {
	res := &Result{
		Label:    label,
		Status:   ResultStatusSuccess,
		Children: children,
	}

	if !children.HasError() {
		return res
	}

	merr := multierror.Append(nil, ErrResultChildrenHasError)

	for _, c := range children {
		if c.Status == ResultStatusError && c.Error != nil {
			merr = multierror.Append(merr, c.Error)
		}
	}

	res.Status = ResultStatusError
	res.ExitCode = -1
	res.Error = merr.ErrorOrNil()

	return res
}

// cancelledResult marks a runnable that never ran because ctx was cancelled.
func cancelledResult(label string, cause error) *Result {
	return &Result{
		Label:    label,
		Status:   ResultStatusSkipped,
		ExitCode: -1,
		Error:    errors.Join(ErrCancelled, cause),
	}
}
