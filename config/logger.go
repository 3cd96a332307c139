package config

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger writing to out. Format "auto" uses the
// text formatter on a terminal and JSON everywhere else.
func NewLogger(cfg LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	if err := ApplyLogging(log, cfg); err != nil {
		return nil, err
	}
	return log, nil
}

// ApplyLogging updates the level and formatter of an existing logger. It is
// safe to call on a logger that is in use.
func ApplyLogging(log *logrus.Logger, cfg LoggingConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	var formatter logrus.Formatter
	switch cfg.Format {
	case "json", "":
		formatter = &logrus.JSONFormatter{}
	case "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "auto":
		if IsTerminal(log.Out) {
			formatter = &logrus.TextFormatter{FullTimestamp: true}
		} else {
			formatter = &logrus.JSONFormatter{}
		}
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Format)
	}

	log.SetFormatter(formatter)
	log.SetLevel(level)
	return nil
}

// IsTerminal reports whether w is a terminal, Cygwin ptys included.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
