package peel

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for peel. By default peel produces no
// log output. Pass nil to restore silence.
//
// Renderers created afterwards hand the logger to their backend when the
// backend accepts one.
//
// Log levels used by peel:
//   - [slog.LevelDebug]: resource rebuilds, pass counts, skipped frames
//   - [slog.LevelInfo]: renderer creation
//   - [slog.LevelWarn]: unsupported shading configurations
//
// Example:
//
//	peel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func propagateLogger(b any, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
