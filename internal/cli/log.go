// Package cli implements the syncell command-line interface.
//
// The CLI samples random cell specifications, composites them onto a canvas
// and writes the intensity image, the label image and a YAML manifest of the
// run. It is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - generate: render a synthetic image from a config file and flags
//   - config init: write the default configuration file
//   - config show: print the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context. A generate run logs one info line per
// stage (composite, export) with its elapsed time as a structured field.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Every line carries the "syncell" prefix
// and a centisecond timestamp.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          "syncell",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stage times one step of a generate run.
type stage struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startStage(l *log.Logger, name string) *stage {
	l.Debug("stage started", "stage", name)
	return &stage{logger: l, name: name, start: time.Now()}
}

// done logs msg at info level followed by keyvals, the stage name and the
// elapsed time rounded to milliseconds.
func (s *stage) done(msg string, keyvals ...any) {
	fields := append(keyvals, "stage", s.name, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, fields...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
