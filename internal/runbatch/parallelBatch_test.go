// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matt-FFFFFF/stint/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelBatchRun_KeepsOrder(t *testing.T) {
	ctx, _ := newTestContext(t, false)

	cmds := make([]Runnable, 0, 8)
	for i := range 8 {
		c := newFakeCmd(fmt.Sprintf("cmd%d", i), ResultStatusSuccess)
		delay := time.Duration(8-i) * time.Millisecond
		c.running = func() { time.Sleep(delay) }
		cmds = append(cmds, c)
	}

	res := NewParallelBatch(NewBaseCommand("batch", "", RunOnSuccess, nil, nil), 0, cmds...).Run(ctx)[0]

	require.Equal(t, ResultStatusSuccess, res.Status)
	require.Len(t, res.Children, 8)

	for i, c := range res.Children {
		assert.Equal(t, fmt.Sprintf("cmd%d", i), c.Label)
	}
}

func TestParallelBatchRun_OneFailure(t *testing.T) {
	ctx, _ := newTestContext(t, false)

	failing := newFakeCmd("bad", ResultStatusError)
	failing.err = errors.New("boom")

	ok := newFakeCmd("good", ResultStatusSuccess)

	res := NewParallelBatch(NewBaseCommand("batch", "", RunOnSuccess, nil, nil), 0, ok, failing).Run(ctx)[0]

	assert.Equal(t, ResultStatusError, res.Status)
	require.ErrorIs(t, res.Error, ErrResultChildrenHasError)
	assert.ErrorContains(t, res.Error, "boom")
	assert.Equal(t, 1, ok.runs(), "a failure does not stop siblings")
}

func TestParallelBatchRun_MaxParallel(t *testing.T) {
	ctx, _ := newTestContext(t, false)

	var running, peak atomic.Int32

	cmds := make([]Runnable, 0, 10)
	for i := range 10 {
		c := newFakeCmd(fmt.Sprintf("cmd%d", i), ResultStatusSuccess)
		c.running = func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}

			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}
		cmds = append(cmds, c)
	}

	res := NewParallelBatch(NewBaseCommand("batch", "", RunOnSuccess, nil, nil), 2, cmds...).Run(ctx)[0]

	require.Equal(t, ResultStatusSuccess, res.Status)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestParallelBatchRun_ChildrenSeeOnlyTheirOwnScopes(t *testing.T) {
	ctx, _ := newTestContext(t, false)

	var wg sync.WaitGroup

	wg.Add(2)

	a := newFakeCmd("a", ResultStatusSuccess)
	b := newFakeCmd("b", ResultStatusSuccess)

	// both children are running at the same time when they record their stacks
	a.running = func() { wg.Done(); wg.Wait() }
	b.running = func() { wg.Done(); wg.Wait() }

	NewParallelBatch(NewBaseCommand("batch", "", RunOnSuccess, nil, nil), 0, a, b).Run(ctx)

	assert.Equal(t, []string{"batch"}, a.names)
	assert.Equal(t, []string{"batch"}, b.names)
}

func TestParallelBatchRun_NestedFunctionScopes(t *testing.T) {
	ctx, out := newTestContext(t, true)

	var seen sync.Map

	fn := func(ctx context.Context, _ string) FunctionCommandReturn {
		names := progress.Names(ctx)
		seen.Store(names[len(names)-1], true)
		return FunctionCommandReturn{}
	}

	batch := NewParallelBatch(NewBaseCommand("batch", "", RunOnSuccess, nil, nil), 0,
		&FunctionCommand{BaseCommand: NewBaseCommand("x", "", RunOnSuccess, nil, nil), Func: fn},
		&FunctionCommand{BaseCommand: NewBaseCommand("y", "", RunOnSuccess, nil, nil), Func: fn},
	)

	res := batch.Run(ctx)[0]
	require.Equal(t, ResultStatusSuccess, res.Status)

	_, okX := seen.Load("batch > x")
	_, okY := seen.Load("batch > y")
	assert.True(t, okX)
	assert.True(t, okY)
	assert.Contains(t, out.String(), "batch done in ")
}

func TestParallelBatchRun_CancelledBeforeStart(t *testing.T) {
	ctx, _ := newTestContext(t, false)
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	c := newFakeCmd("never", ResultStatusSuccess)

	res := NewParallelBatch(NewBaseCommand("batch", "", RunOnSuccess, nil, nil), 0, c).Run(ctx)[0]

	assert.Equal(t, ResultStatusError, res.Status)
	assert.ErrorIs(t, res.Error, ErrCancelled)
	assert.Equal(t, 0, c.runs())
	assert.Equal(t, ResultStatusSkipped, res.Children[0].Status)
}

func TestParallelBatchRun_Empty(t *testing.T) {
	ctx, _ := newTestContext(t, false)

	res := NewParallelBatch(NewBaseCommand("empty", "", RunOnSuccess, nil, nil), 0).Run(ctx)[0]
	assert.Equal(t, ResultStatusSuccess, res.Status)
	assert.Empty(t, res.Children)
}
