// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config builds runnable workflows from YAML or HCL definitions.
//
// A workflow is a named list of commands. Each command has a type that selects
// the builder used to turn it into a runbatch.Runnable:
//
//	shell         run command_line with the system shell
//	exec          run executable with args, looked up in PATH
//	serial        run the nested commands one after the other
//	parallel      run the nested commands concurrently, up to max_parallel
//	foreach       run the nested commands once per item, see items_from
//	sleep         wait for duration, reporting progress in steps
//	scan          index and hash the files below path
//	copy_to_temp  copy the working directory to a temporary one used by the following commands
//
// HCL files can refer to the process environment as env.NAME.
package config
