// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress provides nested progress reporting for long-running operations.
//
// A caller announces an operation with Start, which pushes a Scope onto the scope
// stack carried by the returned context. Update reports completion of the innermost
// scope of the given context, and Scope.End pops the scope and prints a summary.
//
//	ctx, scope := progress.Start(ctx, "Copying files")
//	defer scope.End() //nolint:errcheck
//
//	for i, f := range files {
//		copyFile(ctx, f)
//		_ = progress.Update(ctx, i+1, len(files))
//	}
//
// The stack lives in the context, so a goroutine started with a derived context
// sees its parent's scopes but anything it starts stays invisible to the parent
// and to its siblings. No global scope exists.
//
// Progress lines are held back for the first two seconds of a scope and are then
// limited to one per second, except for the completing update which is always
// written. In-progress lines end in a carriage return so that a terminal
// overwrites them in place; the completing line ends in a newline.
//
// Stack discipline violations (updating without a scope, ending a scope twice or
// ending a scope while a scope started above it is still open) are programming
// errors and panic.
package progress
