/*
logging.go - Structured JSON logging for the server and CLI

PURPOSE:
  One logrus logger per process, configured once at startup and passed
  explicitly to whoever needs it. Nothing logs through the logrus global.

FORMAT:
  JSON lines on the configured writer. The level key is renamed to
  "loglevel" so log shippers do not confuse it with request fields.

  {"loglevel":"info","msg":"Handler.ReturnsNPS.Complete","duration":3,...}

SEE ALSO:
  - log_data.go: Per-request fields and timings
  - wrapper.go: Handler wrapper emitting Start/Complete/Error lines
*/
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogging builds a JSON logger writing to stdout at the given level.
func SetupLogging(level string) (*logrus.Logger, error) {
	return New(os.Stdout, level)
}

// New builds a JSON logger writing to out. An empty level means info.
func New(out io.Writer, level string) (*logrus.Logger, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}

	logger := logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Out:   out,
		Hooks: make(logrus.LevelHooks),
		Level: lvl,
	}

	return &logger, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	logger, _ := New(io.Discard, "panic")
	return logger
}
