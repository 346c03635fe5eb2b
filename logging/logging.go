// File: logging/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// zap logger construction for hioload-thread: a console core, optionally
// teed with a size-rotated file core.

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/momentics/hioload-thread/control"
)

// ParseLevel maps a case-insensitive level name to a zap level, falling back
// to def for empty or unknown names.
func ParseLevel(name string, def zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return def
	}
}

// New builds a logger from cfg. Development mode uses a colored console
// encoder; otherwise JSON. When cfg.File is set, entries are also written to
// that file through lumberjack rotation.
func New(cfg control.LogConfig) (*zap.Logger, error) {
	level := ParseLevel(cfg.Level, zapcore.InfoLevel)
	if cfg.Development && cfg.Level == "" {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(cfg.Development), zapcore.Lock(os.Stderr), level),
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		cores = append(cores, zapcore.NewCore(fileEncoder(), zapcore.AddSync(NewFileWriter(cfg)), level))
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), opts...), nil
}

// NewFileWriter returns the rotating writer used for file output.
func NewFileWriter(cfg control.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// Default is the logger used until an application installs its own:
// production JSON to stderr at info level.
func Default() *zap.Logger {
	return zap.New(
		zapcore.NewCore(consoleEncoder(false), zapcore.Lock(os.Stderr), zapcore.InfoLevel),
		zap.AddCaller(),
	)
}

func consoleEncoder(development bool) zapcore.Encoder {
	if development {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return fileEncoder()
}

func fileEncoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	return zapcore.NewJSONEncoder(ec)
}
