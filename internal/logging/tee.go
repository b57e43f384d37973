package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler forwards each record to every child that accepts its level.
type teeHandler struct {
	children []slog.Handler
}

// newTeeHandler drops nil handlers and flattens nested tees. Zero handlers
// yield NoopHandler and a single handler is returned as is.
func newTeeHandler(handlers ...slog.Handler) slog.Handler {
	var children []slog.Handler
	for _, h := range handlers {
		switch h := h.(type) {
		case nil:
		case *teeHandler:
			children = append(children, h.children...)
		default:
			children = append(children, h)
		}
	}
	switch len(children) {
	case 0:
		return NoopHandler{}
	case 1:
		return children[0]
	}
	return &teeHandler{children: children}
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, child := range t.children {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle gives every child its own copy of the record and joins their errors.
func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, child := range t.children {
		if !child.Enabled(ctx, record.Level) {
			continue
		}
		if err := child.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *teeHandler) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]slog.Handler, len(t.children))
	for i, child := range t.children {
		next[i] = fn(child)
	}
	return &teeHandler{children: next}
}

// TeeLogger returns a logger writing to base's handler and every extra
// handler. A nil base contributes nothing.
func TeeLogger(base *slog.Logger, handlers ...slog.Handler) *slog.Logger {
	if base != nil {
		handlers = append([]slog.Handler{base.Handler()}, handlers...)
	}
	return slog.New(newTeeHandler(handlers...))
}
