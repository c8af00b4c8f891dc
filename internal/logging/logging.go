// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Config struct {
	Level  string    `mapstructure:"level"`
	Format Format    `mapstructure:"format"`
	Output io.Writer `mapstructure:"-"`
}

// Setup applies cfg to the standard logger and returns it. Empty fields
// default to info level, text format and stderr.
func Setup(cfg Config) (*logrus.Logger, error) {
	logger := logrus.StandardLogger()
	if err := Apply(logger, cfg); err != nil {
		return nil, err
	}
	return logger, nil
}

func Apply(logger *logrus.Logger, cfg Config) error {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	var formatter logrus.Formatter
	switch cfg.Format {
	case "", FormatText:
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	case FormatJSON:
		formatter = &logrus.JSONFormatter{TimestampFormat: time.RFC3339}
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	logger.SetLevel(level)
	logger.SetFormatter(formatter)
	logger.SetOutput(out)
	return nil
}
