// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/matt-FFFFFF/stint/internal/ctxlog"
)

const (
	// QuietPeriod is how long a scope runs before any progress line is written.
	QuietPeriod = 2 * time.Second
	// ThrottleInterval is the minimum time between two in-progress lines of a scope.
	ThrottleInterval = time.Second
	// SummaryThreshold is the elapsed time above which End always writes a summary.
	SummaryThreshold = 2 * time.Second
)

var (
	// ErrNoActiveScope is the panic value when Update is called on a context without a scope.
	ErrNoActiveScope = errors.New("no active progress scope in context")
	// ErrScopeEnded is the panic value when a scope is used or ended after End.
	ErrScopeEnded = errors.New("progress scope already ended")
	// ErrScopeOrder is the panic value when a scope is ended before the scopes started above it.
	ErrScopeOrder = errors.New("progress scope ended out of order")
)

type scopeKey struct{}

// Scope is the progress state of one running operation.
// It is created by Start and released by End.
type Scope struct {
	name     string
	start    time.Time
	parent   *Scope
	reporter *Reporter
	verbose  func() bool

	lastReportedMs atomic.Int64 // elapsed ms of the last progress line
	open           atomic.Int32 // child scopes started but not yet ended
	ended          atomic.Bool
}

// Start pushes a new scope called name onto the scope stack of ctx.
// The returned context carries the new stack; ctx itself is not modified.
// The caller must call End on the returned scope, usually with defer.
func Start(ctx context.Context, name string) (context.Context, *Scope) {
	r := ReporterFrom(ctx)

	s := &Scope{
		name:     name,
		start:    r.now(),
		parent:   current(ctx),
		reporter: r,
		verbose:  r.verbosity(ctx),
	}

	if s.parent != nil {
		s.parent.open.Add(1)
	}

	if s.verbose() {
		if err := r.sink.write(name + "\r"); err != nil {
			ctxlog.Debug(ctx, "progress start marker not written", "scope", name, "error", err)
		}
	}

	return context.WithValue(ctx, scopeKey{}, s), s
}

// Do runs fn inside a new scope called name and ends the scope on every exit
// path, including a panic in fn.
func Do(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	ctx, scope := Start(ctx, name)

	defer func() {
		err = errors.Join(err, scope.End())
	}()

	return fn(ctx)
}

// Update reports that done of total units of the innermost scope of ctx are complete.
// A total of zero means the total is not known.
// It panics if ctx carries no scope or its innermost scope has ended.
func Update(ctx context.Context, done, total int) error {
	s := current(ctx)
	if s == nil {
		panic(ErrNoActiveScope)
	}

	if s.ended.Load() {
		panic(fmt.Errorf("%w: %q", ErrScopeEnded, s.name))
	}

	return s.update(done, total)
}

func (s *Scope) update(done, total int) error {
	elapsed := s.Elapsed()
	if elapsed < QuietPeriod {
		return nil
	}

	elapsedMs := elapsed.Milliseconds()

	if done != total {
		last := s.lastReportedMs.Load()
		if elapsedMs-last < ThrottleInterval.Milliseconds() {
			return nil
		}

		// another goroutine sharing this scope won the slot
		if !s.lastReportedMs.CompareAndSwap(last, elapsedMs) {
			return nil
		}
	} else {
		s.lastReportedMs.Store(elapsedMs)
	}

	return s.reporter.sink.write(progressLine(s.name, done, total, elapsed))
}

// End pops the scope and, when verbose or when the scope ran longer than
// SummaryThreshold, writes "<name> done in <duration>".
// It panics if the scope has already ended or a scope started above it is still open.
func (s *Scope) End() error {
	if s.ended.Swap(true) {
		panic(fmt.Errorf("%w: %q", ErrScopeEnded, s.name))
	}

	if n := s.open.Load(); n != 0 {
		panic(fmt.Errorf("%w: %q still has %d open scope(s)", ErrScopeOrder, s.name, n))
	}

	if s.parent != nil {
		s.parent.open.Add(-1)
	}

	elapsed := s.Elapsed()
	if !s.verbose() && elapsed <= SummaryThreshold {
		return nil
	}

	return s.reporter.sink.write(s.name + " done in " + FormatDuration(elapsed) + "\n")
}

// Name returns the display name of the scope.
func (s *Scope) Name() string {
	return s.name
}

// Elapsed returns the time since the scope was started.
func (s *Scope) Elapsed() time.Duration {
	return s.reporter.now().Sub(s.start)
}

// Depth returns the number of scopes on the stack of ctx.
func Depth(ctx context.Context) int {
	n := 0
	for s := current(ctx); s != nil; s = s.parent {
		n++
	}

	return n
}

// Names returns the names of the scopes on the stack of ctx, outermost first.
func Names(ctx context.Context) []string {
	var names []string
	for s := current(ctx); s != nil; s = s.parent {
		names = append(names, s.name)
	}

	slices.Reverse(names)

	return names
}

func current(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}
