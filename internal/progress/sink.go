// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"errors"
	"io"
	"sync"

	"golang.org/x/term"
)

// ErrWrite is returned when progress output could not be written.
var ErrWrite = errors.New("error when writing progress output")

// Sink serialises writes to a shared writer so that each line is written whole.
type Sink struct {
	m *sync.Mutex
	w io.Writer
}

// NewSink wraps w. A nil writer discards all output.
func NewSink(w io.Writer) *Sink {
	if w == nil {
		w = io.Discard
	}

	return &Sink{
		m: &sync.Mutex{},
		w: w,
	}
}

// Interactive reports whether the sink writes to a terminal, where carriage
// returns rewrite the current line. Elsewhere lines simply accumulate.
// It is diagnostic only: output is the same either way, so a captured log
// shows every "\r" line that a terminal would have overwritten.
func (s *Sink) Interactive() bool {
	f, ok := s.w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

func (s *Sink) write(line string) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, err := io.WriteString(s.w, line); err != nil {
		return errors.Join(ErrWrite, err)
	}

	return nil
}
