// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scan indexes and hashes the regular files below a directory.
//
// Indexing reports an open ended count, hashing reports files done out of the
// total found. Both phases run in their own progress scope.
package scan
