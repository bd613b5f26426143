// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

// Definition is the root of a workflow file.
type Definition struct {
	Name        string    `yaml:"name" hcl:"name,optional"`
	Description string    `yaml:"description,omitempty" hcl:"description,optional"`
	Commands    []Command `yaml:"commands" hcl:"command,block"`
}

// Command is one entry of a workflow. Which fields apply depends on Type.
type Command struct {
	Type             string            `yaml:"type" hcl:"type,label"`
	Name             string            `yaml:"name" hcl:"name,label"`
	WorkingDirectory string            `yaml:"working_directory,omitempty" hcl:"working_directory,optional"`
	Env              map[string]string `yaml:"env,omitempty" hcl:"env,optional"`
	RunsOn           string            `yaml:"runs_on_condition,omitempty" hcl:"runs_on_condition,optional"`
	RunsOnExitCodes  []int             `yaml:"runs_on_exit_codes,omitempty" hcl:"runs_on_exit_codes,optional"`

	// shell
	CommandLine      string `yaml:"command_line,omitempty" hcl:"command_line,optional"`
	SuccessExitCodes []int  `yaml:"success_exit_codes,omitempty" hcl:"success_exit_codes,optional"`
	SkipExitCodes    []int  `yaml:"skip_exit_codes,omitempty" hcl:"skip_exit_codes,optional"`

	// serial, parallel and foreach
	Commands    []Command `yaml:"commands,omitempty" hcl:"command,block"`
	MaxParallel int       `yaml:"max_parallel,omitempty" hcl:"max_parallel,optional"`

	// exec
	Executable string   `yaml:"executable,omitempty" hcl:"executable,optional"`
	Args       []string `yaml:"args,omitempty" hcl:"args,optional"`

	// foreach
	Mode          string   `yaml:"mode,omitempty" hcl:"mode,optional"`
	ItemsFrom     string   `yaml:"items_from,omitempty" hcl:"items_from,optional"` // list, files, directories or split
	Items         []string `yaml:"items,omitempty" hcl:"items,optional"`
	Pattern       string   `yaml:"pattern,omitempty" hcl:"pattern,optional"`
	Depth         int      `yaml:"depth,omitempty" hcl:"depth,optional"`
	IncludeHidden bool     `yaml:"include_hidden,omitempty" hcl:"include_hidden,optional"`
	Value         string   `yaml:"value,omitempty" hcl:"value,optional"`
	Delimiter     string   `yaml:"delimiter,omitempty" hcl:"delimiter,optional"`
	ItemCwd       bool     `yaml:"item_working_directory,omitempty" hcl:"item_working_directory,optional"`

	// sleep
	Duration string `yaml:"duration,omitempty" hcl:"duration,optional"`
	Steps    int    `yaml:"steps,omitempty" hcl:"steps,optional"`

	// scan
	Path string `yaml:"path,omitempty" hcl:"path,optional"`
}
