// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs trees of commands and collects their results.
//
// Commands are OS processes or Go functions. They are grouped into serial or
// parallel batches, which can be nested. Every runnable opens a progress scope
// for the duration of its Run, so nested batches report through the progress
// stack carried in the context. Batches report how many children have
// completed.
package runbatch
