package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"otakurganizer/internal/config"
	"otakurganizer/internal/logging"
)

// Level classifies a message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Message is one status message.
type Message struct {
	Level Level
	Text  string
	Time  time.Time
}

// Sink receives messages.
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg Message) error

func (f SinkFunc) Deliver(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Notifier fans messages out to sinks. A nil Notifier drops everything.
type Notifier struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// New builds a notifier over sinks. Nil sinks are ignored.
func New(logger *slog.Logger, sinks ...Sink) *Notifier {
	n := &Notifier{logger: logging.NewComponentLogger(logger, "notifications"), now: time.Now}
	for _, sink := range sinks {
		if sink != nil {
			n.sinks = append(n.sinks, sink)
		}
	}
	return n
}

// NewFromConfig adds an ntfy sink to extra when a topic is configured.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, extra ...Sink) *Notifier {
	sinks := append([]Sink(nil), extra...)
	if cfg != nil {
		if ntfy := NewNtfySink(cfg.Notifications); ntfy != nil {
			sinks = append(sinks, ntfy)
		}
	}
	return New(logger, sinks...)
}

// Notify delivers text at level to every sink.
func (n *Notifier) Notify(ctx context.Context, level Level, text string) {
	if n == nil {
		return
	}
	msg := Message{Level: level, Text: strings.TrimSpace(text), Time: n.now()}
	for _, sink := range n.sinks {
		if err := sink.Deliver(ctx, msg); err != nil {
			logging.WarnWithContext(n.logger, "notification delivery failed", "notification_failed",
				logging.String("level", string(level)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "message not shown on one channel"),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			)
		}
	}
}

func (n *Notifier) Info(ctx context.Context, format string, args ...any) {
	n.Notify(ctx, LevelInfo, fmt.Sprintf(format, args...))
}

func (n *Notifier) Warn(ctx context.Context, format string, args ...any) {
	n.Notify(ctx, LevelWarning, fmt.Sprintf(format, args...))
}

func (n *Notifier) Error(ctx context.Context, format string, args ...any) {
	n.Notify(ctx, LevelError, fmt.Sprintf(format, args...))
}

func (n *Notifier) Success(ctx context.Context, format string, args ...any) {
	n.Notify(ctx, LevelSuccess, fmt.Sprintf(format, args...))
}
