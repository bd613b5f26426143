// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matt-FFFFFF/stint/internal/runbatch"
)

var (
	// ErrUnknownCommandType is returned when a command type is not registered.
	ErrUnknownCommandType = errors.New("unknown command type")
	// ErrCommandCreation is returned when a command cannot be created.
	ErrCommandCreation = errors.New("failed to create command")
	// ErrMissingField is returned when a required field is empty.
	ErrMissingField = errors.New("missing required field")
)

// Builder turns a command definition into a runnable.
// Builders of batch types call Factory.Create for nested commands.
type Builder func(ctx context.Context, f *Factory, def *Command) (runbatch.Runnable, error)

// Factory holds the registered builders and the defaults applied while building.
type Factory struct {
	builders    map[string]Builder
	maxParallel int
}

// NewFactory returns a Factory with the built in command types registered.
// maxParallel is the limit for parallel commands that do not set their own,
// zero or less means unlimited.
func NewFactory(maxParallel int) *Factory {
	f := &Factory{
		builders:    make(map[string]Builder),
		maxParallel: maxParallel,
	}

	f.Register(typeShell, buildShell)
	f.Register(typeSerial, buildSerial)
	f.Register(typeParallel, buildParallel)
	f.Register(typeForEach, buildForEach)
	f.Register(typeSleep, buildSleep)
	f.Register(typeScan, buildScan)
	f.Register(typeExec, buildExec)
	f.Register(typeCopy, buildCopyToTemp)

	return f
}

// Register adds or replaces the builder for a command type.
func (f *Factory) Register(commandType string, b Builder) {
	f.builders[commandType] = b
}

// Types returns the registered command types, sorted.
func (f *Factory) Types() []string {
	return slices.Sorted(maps.Keys(f.builders))
}

// Create builds the runnable for def.
func (f *Factory) Create(ctx context.Context, def *Command) (runbatch.Runnable, error) {
	b, ok := f.builders[def.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommandType, def.Type)
	}

	r, err := b(ctx, f, def)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %w", ErrCommandCreation, def.Type, def.Name, err)
	}

	return r, nil
}

func (f *Factory) createAll(ctx context.Context, defs []Command) ([]runbatch.Runnable, error) {
	runnables := make([]runbatch.Runnable, 0, len(defs))

	for i := range defs {
		r, err := f.Create(ctx, &defs[i])
		if err != nil {
			return nil, err
		}

		runnables = append(runnables, r)
	}

	return runnables, nil
}

func (f *Factory) parallelLimit(def *Command) int {
	if def.MaxParallel > 0 {
		return def.MaxParallel
	}

	return f.maxParallel
}

func newBase(def *Command) (*runbatch.BaseCommand, error) {
	cond, err := runbatch.NewRunCondition(def.RunsOn)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return runbatch.NewBaseCommand(def.Name, def.WorkingDirectory, cond, slices.Clone(def.RunsOnExitCodes), maps.Clone(def.Env)), nil
}
