// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdflags holds the names of the global flags defined on the root command,
// so that subcommands can read them.
package cmdflags

const (
	Verbose     = "verbose"      // Report every step and log at debug level
	LogFormat   = "log-format"   // text or json
	MaxParallel = "max-parallel" // Default limit for parallel batches
)
