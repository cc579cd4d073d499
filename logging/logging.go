// Package logging - Structured logger construction.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields is an alias of logrus.Fields so callers need not import logrus.
type Fields = logrus.Fields

// Config controls logger construction.
type Config struct {
	// Level is a logrus level name: trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	// File, when set, also writes logs to a rotating file.
	File string `json:"file" yaml:"file"`
	// MaxSizeMB is the rotation size of File.
	MaxSizeMB int `json:"maxSizeMB" yaml:"maxSizeMB" validate:"gte=0"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `json:"maxBackups" yaml:"maxBackups" validate:"gte=0"`
	// NoColors disables ANSI colors on the console output.
	NoColors bool `json:"noColors" yaml:"noColors"`
	// ReportCaller adds file, line and function to each entry.
	ReportCaller bool `json:"reportCaller" yaml:"reportCaller"`
}

// DefaultConfig returns an info-level console logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  100,
		MaxBackups: 3,
	}
}

// New builds a logger writing to stderr and, if configured, a rotating file.
//
// Arguments:
//   - cfg: The logger configuration.
//
// Returns:
//   - The logger.
//   - An error if the level name is invalid.
func New(cfg Config) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit console writer.
func NewWithOutput(cfg Config, console io.Writer) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrap(err, "invalid log level")
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetReportCaller(cfg.ReportCaller)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        cfg.NoColors,
		TimestampFormat: "2006-01-02 15:04:05.000",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	})

	writers := []io.Writer{console}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
			Compress:   true,
		})
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return logger, nil
}
