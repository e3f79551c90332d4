package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger writing to out (stderr when nil)
func NewLogger(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Parse log level
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	return logger
}

// NewFileLogger creates a logger that appends to path, for when the terminal is owned by the UI
func NewFileLogger(level, path string) (*logrus.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, err
	}
	return NewLogger(level, f), f.Close, nil
}

// NewDiscardLogger returns a logger that drops everything, used by tests
func NewDiscardLogger() *logrus.Logger {
	logger := NewLogger("panic", io.Discard)
	return logger
}
