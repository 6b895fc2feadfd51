// Package logging builds the shared *logrus.Logger passed down from
// cmd/yts3 to every pipeline package, with level resolution following
// the teacher's internal/debug convention (DEBUG=true or
// LOG_LEVEL=debug wins over an explicit --log-level flag default).
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger at the given level, honoring DEBUG=true and
// LOG_LEVEL=debug as overrides the way internal/debug used to for the
// teacher's HTTP gateway.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	resolved := level
	if os.Getenv("DEBUG") == "true" || os.Getenv("LOG_LEVEL") == "debug" {
		resolved = "debug"
	}

	lvl, err := logrus.ParseLevel(resolved)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
