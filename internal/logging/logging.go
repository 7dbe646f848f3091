// Package logging configures the diagnostic logger. User-facing output does not go
// through it; it carries debug detail such as timings and per-file decisions.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to w. It logs warnings and above, or everything
// when verbose is set.
func New(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()

	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: !verbose,
		FullTimestamp:    true,
	})
	logger.SetLevel(logrus.WarnLevel)

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

// Component returns an entry tagged with the name of the emitting component.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}

// Discard returns an entry that drops everything.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logrus.NewEntry(logger)
}
