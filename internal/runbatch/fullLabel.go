// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"slices"
	"strings"
)

const labelSeparator = " > "

// FullLabel returns the label of r prefixed by the labels of its parents.
func FullLabel(r Runnable) string {
	if r == nil {
		return "Unknown"
	}

	labels := []string{r.GetLabel()}
	for p := r.GetParent(); p != nil; p = p.GetParent() {
		labels = append(labels, p.GetLabel())
	}

	slices.Reverse(labels)

	return strings.Join(labels, labelSeparator)
}
