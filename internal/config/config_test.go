// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/stint/internal/items"
	"github.com/matt-FFFFFF/stint/internal/progress"
	"github.com/matt-FFFFFF/stint/internal/runbatch"
	"github.com/matt-FFFFFF/stint/internal/scan"
	"github.com/matt-FFFFFF/stint/internal/workspace"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	m   sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.m.Lock()
	defer b.m.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.m.Lock()
	defer b.m.Unlock()

	return b.buf.String()
}

func testContext(t *testing.T) (context.Context, *lockedBuffer) {
	t.Helper()

	out := &lockedBuffer{}
	r := progress.NewReporter(progress.WithWriter(out), progress.WithVerbose(func() bool { return true }))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return progress.WithReporter(ctx, r), out
}

const workflowYAML = `name: demo
description: exercises every batch type
commands:
  - type: shell
    name: greet
    command_line: echo hello
    success_exit_codes: [0, 3]
  - type: parallel
    name: naps
    max_parallel: 2
    commands:
      - type: sleep
        name: short
        duration: 1ms
        steps: 2
      - type: sleep
        name: shorter
        duration: 1ms
  - type: foreach
    name: each
    mode: parallel
    items: [a, b]
    runs_on_condition: always
    commands:
      - type: sleep
        name: tick
        duration: 1ms
`

func TestBuildFromYAML(t *testing.T) {
	ctx := context.Background()

	r, err := NewFactory(4).BuildFromYAML(ctx, []byte(workflowYAML))
	require.NoError(t, err)

	root, ok := r.(*runbatch.SerialBatch)
	require.True(t, ok)
	assert.Equal(t, "demo", root.Label)
	require.Len(t, root.Commands, 3)

	shell, ok := root.Commands[0].(*runbatch.OSCommand)
	require.True(t, ok)
	assert.Equal(t, "greet", shell.Label)
	assert.Equal(t, "echo hello", shell.Args[len(shell.Args)-1])
	assert.Equal(t, []int{0, 3}, shell.SuccessExitCodes)
	assert.Same(t, root, shell.GetParent())

	par, ok := root.Commands[1].(*runbatch.ParallelBatch)
	require.True(t, ok)
	assert.Equal(t, 2, par.MaxParallel)
	require.Len(t, par.Commands, 2)
	assert.Equal(t, "demo > naps > short", runbatch.FullLabel(par.Commands[0]))

	fe, ok := root.Commands[2].(*runbatch.ForEachCommand)
	require.True(t, ok)
	assert.Equal(t, runbatch.ForEachParallel, fe.Mode)
	assert.Equal(t, 4, fe.MaxParallel)
	assert.Equal(t, runbatch.RunOnAlways, fe.RunsOnCondition)

	items, err := fe.ItemsProvider(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)
}

func TestBuildFromYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "not yaml",
			yaml: "name: [unclosed",
			want: ErrInvalidYaml,
		},
		{
			name: "unknown field",
			yaml: "name: x\nbogus: true\ncommands:\n  - type: sleep\n    name: s\n    duration: 1s\n",
			want: ErrInvalidYaml,
		},
		{
			name: "no commands",
			yaml: "name: x\n",
			want: ErrNoCommands,
		},
		{
			name: "unknown type",
			yaml: "commands:\n  - type: teleport\n    name: t\n",
			want: ErrUnknownCommandType,
		},
		{
			name: "shell without command line",
			yaml: "commands:\n  - type: shell\n    name: t\n",
			want: ErrMissingField,
		},
		{
			name: "sleep without duration",
			yaml: "commands:\n  - type: sleep\n    name: t\n",
			want: ErrMissingField,
		},
		{
			name: "bad duration",
			yaml: "commands:\n  - type: sleep\n    name: t\n    duration: soon\n",
			want: ErrInvalidDuration,
		},
		{
			name: "negative duration",
			yaml: "commands:\n  - type: sleep\n    name: t\n    duration: -1s\n",
			want: ErrInvalidDuration,
		},
		{
			name: "bad run condition",
			yaml: "commands:\n  - type: sleep\n    name: t\n    duration: 1s\n    runs_on_condition: sometimes\n",
			want: runbatch.ErrRunConditionUnknown,
		},
		{
			name: "bad foreach mode",
			yaml: "commands:\n  - type: foreach\n    name: t\n    mode: sideways\n",
			want: ErrInvalidMode,
		},
		{
			name: "bad items source",
			yaml: "commands:\n  - type: foreach\n    name: t\n    items_from: nowhere\n",
			want: ErrInvalidItemsSource,
		},
		{
			name: "files without pattern",
			yaml: "commands:\n  - type: foreach\n    name: t\n    items_from: files\n",
			want: ErrMissingField,
		},
		{
			name: "exec without executable",
			yaml: "commands:\n  - type: exec\n    name: t\n",
			want: ErrMissingField,
		},
		{
			name: "exec not in path",
			yaml: "commands:\n  - type: exec\n    name: t\n    executable: stint-test-does-not-exist\n",
			want: ErrCommandNotFound,
		},
		{
			name: "nested error",
			yaml: "commands:\n  - type: serial\n    name: outer\n    commands:\n      - type: teleport\n        name: t\n",
			want: ErrUnknownCommandType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(0).BuildFromYAML(context.Background(), []byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

const workflowHCL = `
name = "hcl demo"

command "shell" "greet" {
  command_line = "echo ${upper(env.STINT_TEST_GREETING)}"
  env = {
    COLOUR = "blue"
  }
}

command "serial" "group" {
  working_directory = "sub"

  command "sleep" "nap" {
    duration = "1ms"
    steps    = 1
  }
}
`

func TestBuildFromHCL(t *testing.T) {
	t.Setenv("STINT_TEST_GREETING", "hello")

	r, err := NewFactory(0).BuildFromHCL(context.Background(), "workflow.hcl", []byte(workflowHCL))
	require.NoError(t, err)

	root, ok := r.(*runbatch.SerialBatch)
	require.True(t, ok)
	assert.Equal(t, "hcl demo", root.Label)
	require.Len(t, root.Commands, 2)

	shell, ok := root.Commands[0].(*runbatch.OSCommand)
	require.True(t, ok)
	assert.Equal(t, "echo HELLO", shell.Args[len(shell.Args)-1])
	assert.Equal(t, map[string]string{"COLOUR": "blue"}, shell.Env)

	group, ok := root.Commands[1].(*runbatch.SerialBatch)
	require.True(t, ok)
	assert.Equal(t, "sub", group.Cwd)
	require.Len(t, group.Commands, 1)
	assert.Equal(t, "nap", group.Commands[0].GetLabel())
}

func TestBuildFromHCL_Invalid(t *testing.T) {
	_, err := NewFactory(0).BuildFromHCL(context.Background(), "bad.hcl", []byte(`command "shell" {`))
	assert.ErrorIs(t, err, ErrInvalidHcl)
}

func TestBuild_SelectsFormatByExtension(t *testing.T) {
	f := NewFactory(0)
	ctx := context.Background()

	_, err := f.Build(ctx, "flow.yml", []byte(workflowYAML))
	require.NoError(t, err)

	t.Setenv("STINT_TEST_GREETING", "hi")

	_, err = f.Build(ctx, "flow.hcl", []byte(workflowHCL))
	require.NoError(t, err)

	_, err = f.Build(ctx, "flow.json", []byte("{}"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestBuildDefinition_DefaultName(t *testing.T) {
	r, err := NewFactory(0).BuildDefinition(context.Background(), &Definition{
		Commands: []Command{{Type: typeSleep, Name: "s", Duration: "1ms"}},
	})
	require.NoError(t, err)
	assert.Equal(t, defaultWorkflowName, r.GetLabel())
}

func TestFactory_Register(t *testing.T) {
	f := NewFactory(0)
	assert.Equal(t, []string{"copy_to_temp", "exec", "foreach", "parallel", "scan", "serial", "shell", "sleep"}, f.Types())

	f.Register("noop", func(_ context.Context, _ *Factory, def *Command) (runbatch.Runnable, error) {
		return &runbatch.FunctionCommand{BaseCommand: runbatch.NewBaseCommand(def.Name, "", runbatch.RunOnSuccess, nil, nil)}, nil
	})

	r, err := f.Create(context.Background(), &Command{Type: "noop", Name: "nothing"})
	require.NoError(t, err)
	assert.Equal(t, "nothing", r.GetLabel())

	f.Register("broken", func(context.Context, *Factory, *Command) (runbatch.Runnable, error) {
		return nil, errors.New("boom")
	})

	_, err = f.Create(context.Background(), &Command{Type: "broken", Name: "b"})
	assert.ErrorIs(t, err, ErrCommandCreation)
	assert.ErrorContains(t, err, "boom")
}

func TestRunWorkflow(t *testing.T) {
	if runtime.GOOS == goosWindows {
		t.Skip("uses a POSIX shell")
	}

	t.Setenv(shellEnv, "")

	ctx, out := testContext(t)

	r, err := NewFactory(2).BuildFromYAML(ctx, []byte(workflowYAML))
	require.NoError(t, err)

	res := r.Run(ctx)
	require.Len(t, res, 1)
	assert.False(t, res.HasError(), "%v", res[0].Error)
	assert.Equal(t, runbatch.ResultStatusSuccess, res[0].Status)
	require.Len(t, res[0].Children, 3)
	assert.Equal(t, "hello\n", string(res[0].Children[0].StdOut))

	assert.Contains(t, out.String(), "demo > naps > short")
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, _ := testContext(t)

	r, err := NewFactory(0).Create(ctx, &Command{Type: typeSleep, Name: "long", Duration: "1h"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	res := r.Run(ctx)
	require.Len(t, res, 1)
	assert.Equal(t, runbatch.ResultStatusError, res[0].Status)
	assert.ErrorIs(t, res[0].Error, context.DeadlineExceeded)
}

func TestScanBuiltin(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/sub", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/data/sub/a.txt", []byte("hello"), 0o644))

	stubs := gostub.Stub(&scan.FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	ctx, out := testContext(t)

	r, err := NewFactory(2).Create(ctx, &Command{Type: typeScan, Name: "index", Path: "sub", WorkingDirectory: "/data"})
	require.NoError(t, err)

	res := r.Run(ctx)
	require.Len(t, res, 1)
	assert.Equal(t, runbatch.ResultStatusSuccess, res[0].Status, "%v", res[0].Error)
	assert.Contains(t, out.String(), "hashing /data/sub")
}

func TestScanBuiltin_MissingPath(t *testing.T) {
	stubs := gostub.Stub(&scan.FsFactory, afero.NewMemMapFs)
	defer stubs.Reset()

	ctx, _ := testContext(t)

	r, err := NewFactory(0).Create(ctx, &Command{Type: typeScan, Name: "index", Path: "/nowhere"})
	require.NoError(t, err)

	res := r.Run(ctx)
	require.Len(t, res, 1)
	assert.Equal(t, runbatch.ResultStatusError, res[0].Status)
	assert.ErrorIs(t, res[0].Error, scan.ErrScan)
}

const copyThenScanYAML = `name: isolated
commands:
  - type: copy_to_temp
    name: copy
    working_directory: /src
  - type: scan
    name: index
`

func TestCopyToTempThenScan(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/sub", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/src/sub/a.txt", []byte("hello"), 0o644))

	stubs := gostub.Stub(&scan.FsFactory, func() afero.Fs { return fs }).
		Stub(&workspace.FS, fs).
		Stub(&workspace.TempDirPath, func() string { return "/tmp" }).
		Stub(&workspace.RandomName, func(prefix string, _ int) string { return prefix + "copy" })
	defer stubs.Reset()

	ctx, out := testContext(t)

	r, err := NewFactory(0).BuildFromYAML(ctx, []byte(copyThenScanYAML))
	require.NoError(t, err)

	res := r.Run(ctx)
	require.Len(t, res, 1)
	assert.Equal(t, runbatch.ResultStatusSuccess, res[0].Status, "%v", res[0].Error)
	assert.Contains(t, out.String(), "hashing /tmp/stint_copy")

	got, err := afero.ReadFile(fs, "/tmp/stint_copy/sub/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestForEachDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, d := range []string{"/repo/mod1", "/repo/mod2", "/repo/.hidden"} {
		require.NoError(t, fs.MkdirAll(d, 0o755))
		require.NoError(t, afero.WriteFile(fs, d+"/main.tf", []byte(d), 0o644))
	}

	stubs := gostub.Stub(&items.FsFactory, func() afero.Fs { return fs }).
		Stub(&scan.FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	ctx, out := testContext(t)

	r, err := NewFactory(0).Create(ctx, &Command{
		Type:             typeForEach,
		Name:             "modules",
		WorkingDirectory: "/repo",
		ItemsFrom:        itemsFromDirectories,
		Depth:            1,
		ItemCwd:          true,
		Commands:         []Command{{Type: typeScan, Name: "index"}},
	})
	require.NoError(t, err)

	res := r.Run(ctx)
	require.Len(t, res, 1)
	assert.Equal(t, runbatch.ResultStatusSuccess, res[0].Status, "%v", res[0].Error)
	require.Len(t, res[0].Children, 2)
	assert.Equal(t, "[mod1]", res[0].Children[0].Label)
	assert.Equal(t, "[mod2]", res[0].Children[1].Label)

	assert.Contains(t, out.String(), "hashing /repo/mod1")
	assert.Contains(t, out.String(), "hashing /repo/mod2")
	assert.NotContains(t, out.String(), ".hidden")
}

func TestForEachSplit(t *testing.T) {
	t.Setenv("STINT_TEST_TARGETS", "dev, prod")

	hcl := `
command "foreach" "targets" {
  items_from = "split"
  value      = env.STINT_TEST_TARGETS
  command "sleep" "nap" {
    duration = "1ms"
  }
}
`

	r, err := NewFactory(0).BuildFromHCL(context.Background(), "split.hcl", []byte(hcl))
	require.NoError(t, err)

	root, ok := r.(*runbatch.SerialBatch)
	require.True(t, ok)

	fe, ok := root.Commands[0].(*runbatch.ForEachCommand)
	require.True(t, ok)

	got, err := fe.ItemsProvider(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "prod"}, got)
}
