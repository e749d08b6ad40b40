package logging

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel converts DEBUG, INFO, WARN or ERROR (any case) to a slog level.
// Unknown values fall back to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s is a level name understood by ParseLevel.
func ValidLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
		return true
	default:
		return false
	}
}

// New creates a structured logger writing to w. Format is "json" or "text";
// anything else selects json.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Event identifies a resilience or lifecycle event in log records.
type Event string

// Event constants identify the kind of record for log filtering
const (
	EventPlaylistLoaded       Event = "playlist_loaded"
	EventPlaylistFailed       Event = "playlist_failed"
	EventPlaybackFailed       Event = "playback_failed"
	EventCircuitBreakerChange Event = "circuit_breaker_change"
	EventFavoriteToggled      Event = "favorite_toggled"
)

// LogCircuitBreakerChange logs a circuit breaker state change (WARN level)
func LogCircuitBreakerChange(logger *slog.Logger, oldState, newState, source string) {
	if logger == nil {
		return
	}
	attrs := []any{
		"event", EventCircuitBreakerChange,
		"old_state", oldState,
		"new_state", newState,
	}
	if source != "" {
		attrs = append(attrs, "source", source)
	}
	logger.Warn("circuit breaker state changed", attrs...)
}
