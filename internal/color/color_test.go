// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsColorEnabled(t *testing.T) {
	t.Setenv(NoColor, "1")
	assert.False(t, isColorEnabled(), "NO_COLOR disables colour")

	t.Setenv(ForceColor, "1")
	assert.False(t, isColorEnabled(), "NO_COLOR wins over FORCE_COLOR")

	t.Setenv(NoColor, "")
	assert.True(t, isColorEnabled(), "FORCE_COLOR enables colour")
}

func TestColorize(t *testing.T) {
	prev := SetEnabled(true)
	t.Cleanup(func() { SetEnabled(prev) })

	assert.Equal(t, "\033[31mfail\033[0m", Colorize("fail", FgRed))
	assert.Equal(t, "\033[1;32mok\033[0m", Colorize("ok", Bold, FgGreen))
	assert.Equal(t, "plain", Colorize("plain"))
	assert.Equal(t, "\033[36m", ControlString(FgCyan))

	SetEnabled(false)
	assert.Equal(t, "fail", Colorize("fail", FgRed))
	assert.Empty(t, ControlString(FgCyan))
	assert.Equal(t, "\033[33mwarn\033[0m", Wrap("warn", FgYellow))
}

func BenchmarkColorize(b *testing.B) {
	prev := SetEnabled(true)
	b.Cleanup(func() { SetEnabled(prev) })

	for b.Loop() {
		Colorize("benchmark", FgRed)
	}
}
