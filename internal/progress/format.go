// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Percent returns the completed percentage of done out of total, floored.
// done is clamped into [0, total] and a total of zero yields 0.
// The result stays below 100 while done is less than total.
func Percent(done, total int) int {
	total = max(total, 0)
	clamped := min(max(done, 0), total)

	p := int(math.Floor(100 * math.Min(1, float64(clamped)/math.Max(1, float64(total)))))

	// float rounding must not report a running operation as complete
	if p >= 100 && done < total {
		p = 99
	}

	return min(max(p, 0), 100)
}

// FormatDuration renders d as a clock (hh:mm:ss) above one minute, as seconds
// above one second and as milliseconds otherwise. Seconds and milliseconds are
// rounded to two decimals.
//
//	500ms   -> "500ms"
//	1500ms  -> "1.5s"
//	65000ms -> "00:01:05"
func FormatDuration(d time.Duration) string {
	switch {
	case d.Minutes() > 1:
		return formatClock(d)
	case d.Seconds() > 1:
		return formatDecimal(d.Seconds()) + "s"
	default:
		return formatDecimal(float64(d)/float64(time.Millisecond)) + "ms"
	}
}

func formatClock(d time.Duration) string {
	d = max(d, 0).Truncate(time.Second)

	h := int64(d / time.Hour)
	m := int64(d/time.Minute) % 60
	s := int64(d/time.Second) % 60

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func progressLine(name string, done, total int, elapsed time.Duration) string {
	end := "\r"
	if done == total {
		end = "\n"
	}

	return fmt.Sprintf("%s: %3d%% (%d/%d), %s %s", name, Percent(done, total), done, total, formatClock(elapsed), end)
}
