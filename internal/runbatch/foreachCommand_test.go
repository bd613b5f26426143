// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachCommand_Run(t *testing.T) {
	for _, mode := range []ForEachMode{ForEachSerial, ForEachParallel} {
		t.Run(map[ForEachMode]string{ForEachSerial: "serial", ForEachParallel: "parallel"}[mode], func(t *testing.T) {
			ctx, _ := newTestContext(t, false)

			noop := func(context.Context, string) FunctionCommandReturn { return FunctionCommandReturn{} }
			first := &FunctionCommand{BaseCommand: NewBaseCommand("first", "", RunOnSuccess, nil, nil), Func: noop}
			second := &FunctionCommand{BaseCommand: NewBaseCommand("second", "", RunOnSuccess, nil, nil), Func: noop}

			f := NewForEachCommand(NewBaseCommand("each", "/work", RunOnSuccess, nil, map[string]string{"K": "v"}),
				StaticItems("a", "b", "c"), mode, first, second)

			res := f.Run(ctx)
			require.Len(t, res, 1)
			require.Equal(t, ResultStatusSuccess, res[0].Status, res[0].Error)
			assert.Equal(t, "each", res[0].Label)
			require.Len(t, res[0].Children, 3)

			for i, item := range []string{"a", "b", "c"} {
				assert.Equal(t, "["+item+"]", res[0].Children[i].Label)
				assert.Len(t, res[0].Children[i].Children, 2)
			}

			assert.Nil(t, first.GetParent(), "templates are cloned, not reparented")
			assert.Empty(t, first.Env, "templates do not receive item variables")
		})
	}
}

func TestForEachCommand_ItemEnv(t *testing.T) {
	skipOnWindows(t)

	ctx, _ := newTestContext(t, false)

	var (
		m     sync.Mutex
		items []string
		cwds  []string
	)

	fn := &FunctionCommand{
		BaseCommand: NewBaseCommand("fn", "", RunOnSuccess, nil, nil),
		Func: func(ctx context.Context, cwd string) FunctionCommandReturn {
			m.Lock()
			defer m.Unlock()

			cwds = append(cwds, cwd)

			return FunctionCommandReturn{}
		},
	}

	shell := &OSCommand{
		BaseCommand: NewBaseCommand("echo", "", RunOnSuccess, nil, nil),
		Path:        "/bin/sh",
		Args:        []string{"-c", "printf %s \"$ITEM\""},
	}

	f := NewForEachCommand(NewBaseCommand("each", "/tmp", RunOnSuccess, nil, nil), StaticItems("x", "y"), ForEachParallel, fn, shell)
	res := f.Run(ctx)[0]
	require.Equal(t, ResultStatusSuccess, res.Status, res.Error)

	for _, item := range res.Children {
		items = append(items, string(item.Children[1].StdOut))
	}

	slices.Sort(items)
	assert.Equal(t, []string{"x", "y"}, items)
	assert.Equal(t, []string{"/tmp", "/tmp"}, cwds)
}

func TestForEachCommand_ProviderError(t *testing.T) {
	ctx, _ := newTestContext(t, false)

	errList := errors.New("cannot list")
	f := NewForEachCommand(NewBaseCommand("each", "", RunOnSuccess, nil, nil),
		func(context.Context, string) ([]string, error) { return nil, errList }, ForEachSerial)

	res := f.Run(ctx)[0]
	assert.Equal(t, ResultStatusError, res.Status)
	assert.ErrorIs(t, res.Error, ErrItemsProviderFailed)
	assert.ErrorIs(t, res.Error, errList)
}

func TestForEachCommand_NoItems(t *testing.T) {
	ctx, _ := newTestContext(t, false)

	res := NewForEachCommand(NewBaseCommand("each", "", RunOnSuccess, nil, nil), StaticItems(), ForEachSerial).Run(ctx)[0]
	assert.Equal(t, ResultStatusSuccess, res.Status)
	assert.Empty(t, res.Children)
}

func TestForEachCommand_ItemCwd(t *testing.T) {
	ctx, _ := newTestContext(t, false)

	var cwds []string

	fn := &FunctionCommand{
		BaseCommand: NewBaseCommand("fn", "", RunOnSuccess, nil, nil),
		Func: func(_ context.Context, cwd string) FunctionCommandReturn {
			cwds = append(cwds, cwd)
			return FunctionCommandReturn{}
		},
	}

	f := NewForEachCommand(NewBaseCommand("each", "/repo", RunOnSuccess, nil, nil), StaticItems("a", "/abs"), ForEachSerial, fn)
	f.ItemCwd = true

	res := f.Run(ctx)[0]
	require.Equal(t, ResultStatusSuccess, res.Status, res.Error)
	assert.Equal(t, []string{filepath.Join("/repo", "a"), "/abs"}, cwds)
}
