// Package logging holds the gateway logger setup and the attribute keys
// shared by every log line.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Attribute keys.
const (
	TraceID    = "trace_id"
	OrderID    = "order_id"
	CheckoutID = "checkout_id"
	Status     = "status"
	Error      = "error"
	Component  = "component"
)

// New returns a JSON logger writing to w at the given level name
// ("debug", "info", "warn", "error"). Unknown names fall back to info.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard is a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
