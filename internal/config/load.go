// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/matt-FFFFFF/stint/internal/runbatch"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var (
	// ErrInvalidYaml is returned when a YAML definition cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidHcl is returned when an HCL definition cannot be decoded.
	ErrInvalidHcl = errors.New("invalid HCL")
	// ErrNoCommands is returned when a definition has no commands.
	ErrNoCommands = errors.New("no commands specified")
	// ErrUnknownFormat is returned when the file extension is neither YAML nor HCL.
	ErrUnknownFormat = errors.New("unknown configuration format")
)

const defaultWorkflowName = "workflow"

// Build decodes data according to the extension of fileName and builds the workflow.
func (f *Factory) Build(ctx context.Context, fileName string, data []byte) (runbatch.Runnable, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		return f.BuildFromYAML(ctx, data)
	case ".hcl":
		return f.BuildFromHCL(ctx, fileName, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, fileName)
	}
}

// BuildFromYAML builds a workflow from a YAML definition. Unknown fields are rejected.
func (f *Factory) BuildFromYAML(ctx context.Context, data []byte) (runbatch.Runnable, error) {
	var def Definition
	if err := yaml.UnmarshalWithOptions(data, &def, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYaml, err)
	}

	return f.BuildDefinition(ctx, &def)
}

// BuildFromHCL builds a workflow from an HCL definition.
// fileName is only used in diagnostics and must end in .hcl.
func (f *Factory) BuildFromHCL(ctx context.Context, fileName string, data []byte) (runbatch.Runnable, error) {
	var def Definition
	if err := hclsimple.Decode(fileName, data, evalContext(), &def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHcl, err)
	}

	return f.BuildDefinition(ctx, &def)
}

// BuildDefinition builds a workflow whose root is a serial batch named after the definition.
func (f *Factory) BuildDefinition(ctx context.Context, def *Definition) (runbatch.Runnable, error) {
	if len(def.Commands) == 0 {
		return nil, ErrNoCommands
	}

	children, err := f.createAll(ctx, def.Commands)
	if err != nil {
		return nil, err
	}

	name := def.Name
	if name == "" {
		name = defaultWorkflowName
	}

	return runbatch.NewSerialBatch(runbatch.NewBaseCommand(name, "", runbatch.RunOnSuccess, nil, nil), children...), nil
}

// evalContext exposes the environment as env and a few string functions.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"join":   stdlib.JoinFunc,
			"format": stdlib.FormatFunc,
			"trim":   stdlib.TrimSpaceFunc,
		},
	}
}
