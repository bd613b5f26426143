// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

var _ Runnable = (*ForEachCommand)(nil)

// ItemEnvVar is the environment variable holding the current item.
const ItemEnvVar = "ITEM"

// ErrItemsProviderFailed is returned when the items provider function fails.
var ErrItemsProviderFailed = errors.New("items provider function failed")

// ItemsProviderFunc returns the items to iterate over.
type ItemsProviderFunc func(ctx context.Context, workingDirectory string) ([]string, error)

// StaticItems returns an ItemsProviderFunc that always yields items.
func StaticItems(items ...string) ItemsProviderFunc {
	return func(context.Context, string) ([]string, error) {
		return slices.Clone(items), nil
	}
}

// ForEachMode determines whether items are processed serially or in parallel.
type ForEachMode int

const (
	// ForEachSerial processes one item at a time.
	ForEachSerial ForEachMode = iota
	// ForEachParallel processes all items at once, up to MaxParallel.
	ForEachParallel
)

// ForEachCommand runs a copy of Commands for every item returned by ItemsProvider.
// Each copy sees the item in the ITEM environment variable.
type ForEachCommand struct {
	*BaseCommand
	ItemsProvider ItemsProviderFunc
	Commands      []Runnable
	Mode          ForEachMode
	MaxParallel   int
	ItemCwd       bool // Run each copy in the item, resolved against the working directory
}

// NewForEachCommand creates a new ForEachCommand.
func NewForEachCommand(base *BaseCommand, provider ItemsProviderFunc, mode ForEachMode, commands ...Runnable) *ForEachCommand {
	return &ForEachCommand{
		BaseCommand:   base,
		ItemsProvider: provider,
		Commands:      commands,
		Mode:          mode,
	}
}

// Run implements the Runnable interface for ForEachCommand.
// The items run as a serial or parallel batch that takes the place of the
// ForEachCommand, so the batch scope reports items completed.
func (f *ForEachCommand) Run(ctx context.Context) Results {
	var items []string

	if f.ItemsProvider != nil {
		var err error

		items, err = f.ItemsProvider(ctx, f.Cwd)
		if err != nil {
			return Results{{
				Label:    f.Label,
				Status:   ResultStatusError,
				ExitCode: -1,
				Error:    fmt.Errorf("%w: %w", ErrItemsProviderFailed, err),
			}}
		}
	}

	base := cloneBaseCommand(f.BaseCommand)

	var run Runnable

	if f.Mode == ForEachParallel {
		run = &ParallelBatch{BaseCommand: base, MaxParallel: f.MaxParallel}
	} else {
		run = &SerialBatch{BaseCommand: base}
	}

	run.SetParent(f.GetParent())

	perItem := make([]Runnable, 0, len(items))

	for _, item := range items {
		env := maps.Clone(f.Env)
		if env == nil {
			env = make(map[string]string)
		}

		env[ItemEnvVar] = item

		itemCwd := ""
		if f.ItemCwd {
			itemCwd = item
		}

		itemBase := NewBaseCommand(fmt.Sprintf("[%s]", item), itemCwd, RunOnAlways, nil, env)
		b := &SerialBatch{BaseCommand: itemBase}

		for _, cmd := range f.Commands {
			c := cloneRunnable(cmd)
			c.SetParent(b)
			b.Commands = append(b.Commands, c)
		}

		b.SetParent(run)
		perItem = append(perItem, b)
	}

	switch r := run.(type) {
	case *ParallelBatch:
		r.Commands = perItem
	case *SerialBatch:
		r.Commands = perItem
	}

	return run.Run(ctx)
}
