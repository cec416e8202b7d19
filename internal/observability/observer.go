// Package observability carries structured events out of the hint cache.
// Subsystems emit Events; an Observer decides whether they become log lines,
// test assertions, or nothing.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is the severity of an event.
type Level int

const (
	LevelVerbose Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARN"
	default:
		return "ERROR"
	}
}

// SlogLevel maps the level onto slog.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelVerbose:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType names an event, e.g. "hints.load.complete".
type EventType string

// Event is emitted by a subsystem. Data keys become log attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
