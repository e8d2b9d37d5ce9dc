// Package progress reports crawl progress as a structured event stream,
// with an optional terminal spinner for interactive runs.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
)

// Tracker counts processed variables and narrates the run through the
// logger. Counting resumes from the number of variables a previous run
// already completed, so the displayed position matches the listing.
type Tracker struct {
	logger    *log.Logger
	spin      *spinner.Spinner
	total     int
	processed int
	mu        sync.Mutex
}

// New creates a Tracker. With interactive set, a spinner shows the
// current variable on the terminal.
func New(logger *log.Logger, interactive bool) *Tracker {
	t := &Tracker{logger: logger}
	if interactive {
		t.spin = spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	}
	return t
}

// SetTotal records the full variable count and how many were already
// complete before this run started.
func (t *Tracker) SetTotal(total, alreadyDone int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
	t.processed = alreadyDone
	t.logger.Info("worklist ready",
		"total", total,
		"already_done", alreadyDone,
		"pending", total-alreadyDone)
	if t.spin != nil {
		t.spin.Start()
	}
}

// StartVariable marks a variable as in flight.
func (t *Tracker) StartVariable(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.spin != nil {
		t.spin.Suffix = fmt.Sprintf(" [%d/%d] %s", t.processed+1, t.total, name)
	}
	t.logger.Info("processing variable", "current", t.processed+1, "total", t.total, "name", name)
}

// FinishVariable marks a variable's row as durably written.
func (t *Tracker) FinishVariable(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed++
	t.logger.Info("saved variable", "current", t.processed, "total", t.total, "name", name)
}

// SkipDetail reports that a variable's detail extraction failed and the
// row is being written with whatever was recovered.
func (t *Tracker) SkipDetail(name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logger.Warn("detail extraction failed, writing partial row", "name", name, "err", err)
}

// Stop halts the spinner.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.spin != nil {
		t.spin.Stop()
	}
}
