// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/stint/internal/color"
	"github.com/matt-FFFFFF/stint/internal/progress"
)

// OutputOptions controls what is included in the output.
type OutputOptions struct {
	IncludeStdOut      bool // Whether to include stdout in the output
	IncludeStdErr      bool // Whether to include stderr in the output
	ShowSuccessDetails bool // Whether to show details for successful commands
	ShowDuration       bool // Whether to print how long each runnable took
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdErr: true,
		ShowDuration:  true,
	}
}

// WriteResults writes the results as an indented tree.
func WriteResults(w io.Writer, results Results, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	sb := &strings.Builder{}
	for _, r := range results {
		writeResult(sb, r, "", options)
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("error when writing results: %w", err)
	}

	return nil
}

func writeResult(sb *strings.Builder, r *Result, indent string, options *OutputOptions) {
	mark, markColour := statusMark(r.Status)

	label := r.Label
	if label == "" {
		label = "[unnamed]"
	}

	fmt.Fprintf(sb, "%s%s %s", indent, color.Colorize(mark, markColour), color.Colorize(label, color.Bold, markColour))

	if options.ShowDuration && r.Duration > 0 {
		fmt.Fprintf(sb, " (%s)", progress.FormatDuration(r.Duration))
	}

	if r.ExitCode != 0 {
		fmt.Fprintf(sb, " (exit code: %d)", r.ExitCode)
	}

	sb.WriteString("\n")

	if r.Error != nil && !errors.Is(r.Error, ErrResultChildrenHasError) {
		fmt.Fprintf(sb, "%s  %s %s\n", indent, color.Colorize("➜ Error:", markColour), oneLine(r.Error))
	}

	showDetails := (r.Status == ResultStatusError || options.ShowSuccessDetails) && len(r.Children) == 0

	if showDetails && options.IncludeStdOut && len(r.StdOut) > 0 {
		fmt.Fprintf(sb, "%s  ➜ Output:\n", indent)
		writeIndented(sb, r.StdOut, indent+"     ")
	}

	if showDetails && options.IncludeStdErr && len(r.StdErr) > 0 {
		fmt.Fprintf(sb, "%s  %s\n", indent, color.Colorize("➜ Error Output:", color.FgHiRed))
		writeIndented(sb, r.StdErr, indent+"     ")
	}

	for _, child := range r.Children {
		writeResult(sb, child, indent+"  ", options)
	}
}

func statusMark(s ResultStatus) (string, color.Code) {
	switch s {
	case ResultStatusSuccess:
		return "✓", color.FgGreen
	case ResultStatusError:
		return "✗", color.FgRed
	case ResultStatusSkipped:
		return "~", color.FgYellow
	default:
		return "?", color.FgWhite
	}
}

func oneLine(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}

func writeIndented(sb *strings.Builder, output []byte, indent string) {
	for line := range strings.Lines(strings.TrimRight(string(output), "\n") + "\n") {
		if strings.TrimSpace(line) == "" {
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
	}
}
