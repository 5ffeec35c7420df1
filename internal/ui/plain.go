package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer writes one line per event (for CI and pipes).
// Encoding ticks are collapsed to one line per ten percent.
type PlainRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	stage    Stage
	started  bool
	lastTick int
	errors   int
	warnings int
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output, lastTick: -1}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || event.Stage != r.stage {
		r.started = true
		r.stage = event.Stage
		r.lastTick = -1
	}

	if event.Total > 0 {
		tick := event.Current * 10 / event.Total
		if tick == r.lastTick && event.Current != event.Total {
			return
		}
		r.lastTick = tick
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d", event.Stage.Icon(), event.Current, event.Total)
		if event.Message != "" {
			_, _ = fmt.Fprintf(r.out, " - %s", event.Message)
		}
		_, _ = fmt.Fprintln(r.out)
		return
	}

	if event.Stage == StageComplete {
		return
	}
	msg := event.Message
	if msg == "" {
		msg = event.Stage.String() + "..."
	}
	_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
		r.warnings++
	} else {
		r.errors++
	}
	_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "[%s] %s retriever ready: %d documents in %s",
		StageComplete.Icon(), stats.Strategy, stats.Documents, stats.Duration.Round(time.Millisecond))
	if stats.Incomplete > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d missing fields)", stats.Incomplete)
	}
	_, _ = fmt.Fprintln(r.out)

	if stats.Encoder.Model != "" {
		_, _ = fmt.Fprintf(r.out, "Encoder: %s (%s, %d dims)\n",
			stats.Encoder.Model, stats.Encoder.Provider, stats.Encoder.Dimensions)
	}
	if r.errors > 0 || r.warnings > 0 {
		_, _ = fmt.Fprintf(r.out, "%d errors, %d warnings\n", r.errors, r.warnings)
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

var _ Renderer = (*PlainRenderer)(nil)
