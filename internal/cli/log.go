// Package cli implements the kmeans command-line interface.
//
// This package provides commands for running a complete clustering
// demonstration, generating datasets, assembling frames into a GIF and stepping
// through the algorithm interactively. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - run: Generate (or import) data, cluster it and animate the iterations
//   - generate: Write a Gaussian mixture dataset as CSV
//   - animate: Assemble existing frames into a GIF
//   - step: Interactive terminal view of the algorithm
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger writing to w at the given level.
// Timestamps use centisecond precision ("15:04:05.00") so that consecutive
// iterations of a fast run remain distinguishable in debug output.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress measures one command stage (generating, clustering, assembling)
// and reports it as a single Info line when the stage finishes.
// It is meant for sequential use by the goroutine running the command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing a stage. Call done once the stage completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the stage's key/value fields followed by the elapsed
// time, rounded to the millisecond.
//
// Example output: "INFO Clustered 600 points iterations=10 elapsed=1.234s"
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}

// loggerKey is the context key under which commands find their logger.
// The unexported struct type keeps other packages from colliding with it.
type loggerKey struct{}

// withLogger attaches l to ctx. The root command does this in its
// PersistentPreRunE so that every subcommand logs at the --verbose level.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger.
// Commands executed without the root command (for example directly from a
// test) have none, and get log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return log.Default()
	}
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
