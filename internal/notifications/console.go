package notifications

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// ConsoleSink prints one line per message.
type ConsoleSink struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewConsoleSink writes to w, colouring output when w is a terminal.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &ConsoleSink{w: w, color: color}
}

func (c *ConsoleSink) Deliver(_ context.Context, msg Message) error {
	symbol, colour := levelStyle(msg.Level)
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.color {
		_, err = fmt.Fprintf(c.w, "%s%s%s %s\n", colour, symbol, ansiReset, msg.Text)
	} else {
		_, err = fmt.Fprintf(c.w, "%s %s\n", symbol, msg.Text)
	}
	return err
}

func levelStyle(level Level) (string, string) {
	switch level {
	case LevelSuccess:
		return "✔", ansiGreen
	case LevelWarning:
		return "!", ansiYellow
	case LevelError:
		return "✖", ansiRed
	default:
		return "•", ansiCyan
	}
}
