package state

import (
	"context"
	"log/slog"

	"otakurganizer/internal/notifications"
)

// Handler mirrors log records at or above its level into the state log. It
// is meant to be teed next to the regular handler.
type Handler struct {
	state *State
	level slog.Leveler
}

// NewHandler returns a handler feeding s.
func NewHandler(s *State, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelWarn
	}
	return &Handler{state: s, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	h.state.AddLog(levelFor(record.Level), record.Message)
	return nil
}

func (h *Handler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *Handler) WithGroup(string) slog.Handler { return h }

func levelFor(level slog.Level) notifications.Level {
	switch {
	case level >= slog.LevelError:
		return notifications.LevelError
	case level >= slog.LevelWarn:
		return notifications.LevelWarning
	default:
		return notifications.LevelInfo
	}
}
