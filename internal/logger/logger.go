// Package logger wraps logrus with per-component field scoping.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is a logrus entry carrying the fields of its scope.
type Log struct {
	*logrus.Entry
}

// Fields are a representation of formatted log fields.
type Fields map[string]interface{}

// New creates a text logger writing to stdout at the given level.
func New(level string) (*Log, error) {
	return NewWithOutput(level, os.Stdout)
}

// NewWithOutput creates a text logger writing to out.
func NewWithOutput(level string, out io.Writer) (*Log, error) {
	log := logrus.New()
	log.SetOutput(out)

	log.Formatter = &logrus.TextFormatter{
		TimestampFormat:  "2006-01-02 15:04:05.0000",
		FullTimestamp:    true,
		QuoteEmptyFields: true,
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger: invalid level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	return &Log{Entry: logrus.NewEntry(log)}, nil
}

// FromLogrus wraps an existing logrus logger, e.g. a test null logger.
func FromLogrus(l *logrus.Logger) *Log {
	return &Log{Entry: logrus.NewEntry(l)}
}

// Discard returns a logger that drops everything.
func Discard() *Log {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return FromLogrus(l)
}

// With will add the fields to the formatted log entry.
func (l *Log) With(fields Fields) *Log {
	return &Log{Entry: l.WithFields(logrus.Fields(fields))}
}

// Module scopes the logger to a component.
func (l *Log) Module(name string) *Log {
	return l.With(Fields{"module": name})
}

// GetLevel returns the current level name.
func (l *Log) GetLevel() string {
	return l.Logger.Level.String()
}
