// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// slogger returns the current package logger.
func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger sets the logger used by the software backend. Nil restores
// silent logging. Called by peel.SetLogger through propagation.
func (b *Backend) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}
