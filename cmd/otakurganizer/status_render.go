package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {label: "INFO", color: "\x1b[34m"},
	statusOK:    {label: "OK", color: "\x1b[32m"},
	statusWarn:  {label: "WARN", color: "\x1b[33m"},
	statusError: {label: "ERROR", color: "\x1b[31m"},
}

const ansiReset = "\x1b[0m"

// statusReport collects the lines of the status command.
type statusReport struct {
	colorize bool
	lines    []string
}

func newStatusReport(w io.Writer) *statusReport {
	return &statusReport{colorize: isTerminal(w)}
}

func (r *statusReport) paint(color, text string) string {
	if !r.colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

// section starts a titled block, separated from the previous one.
func (r *statusReport) section(title string) {
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	heading := "== " + strings.TrimSpace(title) + " =="
	blue := statusStyles[statusInfo].color
	r.lines = append(r.lines, r.paint(blue, heading), r.paint(blue, strings.Repeat("-", len(heading))))
}

// line adds "  Label:   [KIND] detail", colored by kind.
func (r *statusReport) line(label string, kind statusKind, detail string) {
	style := statusStyles[kind]
	text := fmt.Sprintf("  %-22s [%s]", label+":", style.label)
	if detail != "" {
		text += " " + detail
	}
	r.lines = append(r.lines, r.paint(style.color, text))
}

func (r *statusReport) writeTo(w io.Writer) {
	for _, line := range r.lines {
		fmt.Fprintln(w, line)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
