// Package cli implements the poster command-line interface.
//
// The CLI is built with cobra and reads defaults from the config file and
// POSTER_* environment variables (see package config). Flags override both.
//
// # Commands
//
//   - render: Fetch map data for a city once and render it in one or more
//     themes and formats
//   - themes: List available themes, or pick one interactively
//   - cache: Inspect or clear the data cache
//   - completion: Generate shell completion scripts (provided by cobra)
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Log output
// goes to stderr; result summaries go to stdout.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 4 posters (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
