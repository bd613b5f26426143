// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"maps"
	"slices"
)

// cloneRunnable deep copies r so that foreach iterations do not share state.
// Parents are reset and must be set by the caller.
func cloneRunnable(r Runnable) Runnable {
	switch cmd := r.(type) {
	case *OSCommand:
		return &OSCommand{
			BaseCommand:      cloneBaseCommand(cmd.BaseCommand),
			Path:             cmd.Path,
			Args:             slices.Clone(cmd.Args),
			SuccessExitCodes: slices.Clone(cmd.SuccessExitCodes),
			SkipExitCodes:    slices.Clone(cmd.SkipExitCodes),
		}
	case *FunctionCommand:
		return &FunctionCommand{
			BaseCommand: cloneBaseCommand(cmd.BaseCommand),
			Func:        cmd.Func,
		}
	case *SerialBatch:
		c := &SerialBatch{BaseCommand: cloneBaseCommand(cmd.BaseCommand)}
		c.Commands = cloneChildren(c, cmd.Commands)

		return c
	case *ParallelBatch:
		c := &ParallelBatch{BaseCommand: cloneBaseCommand(cmd.BaseCommand), MaxParallel: cmd.MaxParallel}
		c.Commands = cloneChildren(c, cmd.Commands)

		return c
	case *ForEachCommand:
		c := &ForEachCommand{
			BaseCommand:   cloneBaseCommand(cmd.BaseCommand),
			ItemsProvider: cmd.ItemsProvider,
			Mode:          cmd.Mode,
			MaxParallel:   cmd.MaxParallel,
			ItemCwd:       cmd.ItemCwd,
		}
		c.Commands = cloneChildren(c, cmd.Commands)

		return c
	default:
		return r
	}
}

func cloneChildren(parent Runnable, children []Runnable) []Runnable {
	out := make([]Runnable, len(children))
	for i, child := range children {
		out[i] = cloneRunnable(child)
		out[i].SetParent(parent)
	}

	return out
}

func cloneBaseCommand(base *BaseCommand) *BaseCommand {
	if base == nil {
		return &BaseCommand{}
	}

	return &BaseCommand{
		Label:           base.Label,
		Cwd:             base.Cwd,
		RunsOnCondition: base.RunsOnCondition,
		RunsOnExitCodes: slices.Clone(base.RunsOnExitCodes),
		Env:             maps.Clone(base.Env),
	}
}
