// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog logger in a context.Context.
//
// The level is shared through LevelVar and initialised from the STINT_LOG_LEVEL
// environment variable (DEBUG, INFO, WARN or ERROR, default WARN).
// The default logger writes to standard error through PrettyHandler, which prints
// a timestamp, the level, the message and the attributes as indented JSON.
package ctxlog
