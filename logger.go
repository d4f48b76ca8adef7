package drawpipe

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/drawpipe/backend/native"
	"github.com/gogpu/drawpipe/filter"
	"github.com/gogpu/drawpipe/gpu"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for drawpipe and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by drawpipe:
//   - [slog.LevelDebug]: program cache hits and misses, proxy resolution
//   - [slog.LevelInfo]: backend and adapter selection
//   - [slog.LevelWarn]: failed tasks, compile errors, evictions
//   - [slog.LevelError]: program key collisions
//
// Example:
//
//	drawpipe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	gpu.SetLogger(l)
	filter.SetLogger(l)
	native.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
