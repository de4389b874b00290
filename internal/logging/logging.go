// Package logging configures the logrus logger shared by all components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Config controls log level and destination.
type Config struct {
	// Level is one of trace, debug, info, warn, error (default: info)
	Level string `yaml:"level"`
	// File is the log file path. Empty means stderr.
	File string `yaml:"file"`
}

// Setup applies cfg to the standard logrus logger. The returned closer
// releases the log file, if one was opened.
func Setup(cfg Config) (io.Closer, error) {
	return setup(log.StandardLogger(), cfg)
}

func setup(logger *log.Logger, cfg Config) (io.Closer, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = l
	}
	logger.SetLevel(level)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	if cfg.File == "" {
		logger.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})
	logger.SetOutput(f)
	return f, nil
}

// Component returns a logger entry tagged with the component name.
func Component(name string) *log.Entry {
	return log.WithField("component", name)
}
