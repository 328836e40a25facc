// Package trace is the allocator's diagnostic event stream.
//
// Events go through a package-level slog logger that discards everything
// until Init enables it. Two gates sit in front of the logger: the
// HOARDKIT_NO_TRACE environment variable switches tracing off for the whole
// process, and Suppress silences it for a dynamic scope.
package trace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"
)

// EnvNoTrace disables tracing process-wide when set to any non-empty value.
const EnvNoTrace = "HOARDKIT_NO_TRACE"

// L is the global trace logger. It discards all output until Init is called.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	enabled    atomic.Bool
	suppressed atomic.Int32
)

// Options configures Init.
type Options struct {
	Enabled bool       // If false, all events are discarded
	Writer  io.Writer  // Destination. Default: os.Stderr
	Level   slog.Level // Minimum level. Default: slog.LevelDebug
	JSON    bool       // Emit JSON records instead of text
}

// Init configures tracing. Call from main() before the first event.
func Init(opts Options) {
	if !opts.Enabled || os.Getenv(EnvNoTrace) != "" {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		enabled.Store(false)
		return
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := opts.Level
	if level == 0 {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, hopts))
	} else {
		L = slog.New(slog.NewTextHandler(w, hopts))
	}
	enabled.Store(true)
}

// Enabled reports whether an event emitted now would be written.
func Enabled() bool {
	return enabled.Load() && suppressed.Load() == 0
}

// Suppress silences tracing until the returned function is called.
// Calls nest; tracing resumes once every restore has run.
//
//	restore := trace.Suppress()
//	defer restore()
func Suppress() (restore func()) {
	suppressed.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { suppressed.Add(-1) })
	}
}

// Event records one trace event at debug level.
func Event(msg string, attrs ...slog.Attr) {
	if !Enabled() {
		return
	}
	L.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

// Addr renders p as a hexadecimal address.
func Addr(key string, p unsafe.Pointer) slog.Attr {
	return slog.Any(key, addr(uintptr(p)))
}

// Count is an integer attribute.
func Count(key string, n int) slog.Attr { return slog.Int(key, n) }

// Flag is a boolean attribute.
func Flag(key string, b bool) slog.Attr { return slog.Bool(key, b) }

// Text is a string attribute.
func Text(key, s string) slog.Attr { return slog.String(key, s) }

type addr uintptr

// LogValue defers formatting until a handler actually writes the record.
func (a addr) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("%#016x", uintptr(a)))
}
