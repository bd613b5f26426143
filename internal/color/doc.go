// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI escape codes.
//
// Colour is on when NO_COLOR is unset and either FORCE_COLOR is set or
// standard error is a terminal. Colorize honours that decision, Wrap does not.
package color
