package main

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"otakurganizer/internal/state"
)

const progressDescriptionWidth = 32

// progressRenderer draws the state's running sweep as a terminal progress
// bar. A zero total renders as a spinner.
type progressRenderer struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
	max     int
}

func newProgressRenderer(w io.Writer, enabled bool) *progressRenderer {
	return &progressRenderer{w: w, enabled: enabled}
}

func (p *progressRenderer) update(snap state.Snapshot) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if snap.Progress == nil {
		p.finishLocked()
		return
	}
	limit := snap.Progress.Total
	if limit <= 0 {
		limit = -1
	}
	if p.bar == nil || p.max != limit {
		p.finishLocked()
		p.bar = progressbar.NewOptions(limit,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSetPredictTime(true),
		)
		p.max = limit
	}
	p.bar.Describe(truncate(snap.Progress.Message, progressDescriptionWidth))
	_ = p.bar.Set(snap.Progress.Current)
}

func (p *progressRenderer) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked()
}

func (p *progressRenderer) finishLocked() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
	p.max = 0
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
