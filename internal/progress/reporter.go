// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/matt-FFFFFF/stint/internal/ctxlog"
)

type reporterKey struct{}

// Reporter holds the collaborators used by scopes: the output sink, the
// verbosity flag and the clock. It keeps no per-operation state and is safe
// for concurrent use.
type Reporter struct {
	sink    *Sink
	verbose func() bool
	clock   func() time.Time
}

// Option configures a Reporter.
type Option func(r *Reporter)

// DefaultReporter writes to standard error and takes verbosity from the context logger.
var DefaultReporter = NewReporter()

// NewReporter creates a Reporter. Without options it writes to os.Stderr, uses
// time.Now and is verbose when the context logger is enabled at debug level.
func NewReporter(opts ...Option) *Reporter {
	r := &Reporter{
		sink:  NewSink(os.Stderr),
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithWriter sends progress output to w.
func WithWriter(w io.Writer) Option {
	return func(r *Reporter) {
		r.sink = NewSink(w)
	}
}

// WithSink sends progress output to an existing sink, so that several
// reporters can share one line-atomic writer.
func WithSink(s *Sink) Option {
	return func(r *Reporter) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithVerbose sets the verbosity flag. The function is read when a scope
// starts and when it ends, and is never written.
func WithVerbose(fn func() bool) Option {
	return func(r *Reporter) {
		r.verbose = fn
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(fn func() time.Time) Option {
	return func(r *Reporter) {
		if fn != nil {
			r.clock = fn
		}
	}
}

// Sink returns the sink the reporter writes to.
func (r *Reporter) Sink() *Sink {
	return r.sink
}

// WithReporter returns a context whose scopes report through r.
// If r is nil, DefaultReporter is used.
func WithReporter(ctx context.Context, r *Reporter) context.Context {
	if r == nil {
		r = DefaultReporter
	}

	return context.WithValue(ctx, reporterKey{}, r)
}

// ReporterFrom returns the reporter carried by ctx, or DefaultReporter.
func ReporterFrom(ctx context.Context) *Reporter {
	r, ok := ctx.Value(reporterKey{}).(*Reporter)
	if !ok || r == nil {
		return DefaultReporter
	}

	return r
}

func (r *Reporter) now() time.Time {
	return r.clock()
}

func (r *Reporter) verbosity(ctx context.Context) func() bool {
	if r.verbose != nil {
		return r.verbose
	}

	logger := ctxlog.Logger(ctx)

	return func() bool {
		return logger.Enabled(context.Background(), slog.LevelDebug)
	}
}
