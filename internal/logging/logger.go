// Package logging builds the operator-facing zap logger.
package logging

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/lumberjack.v3"
)

// Config logger settings.
type Config struct {
	// Level zap level name; empty means info, or debug when Development is set.
	Level string
	// Development enables the debug level by default.
	Development bool
	// File optional JSON log file, rotated by size.
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// New returns a logger writing human readable lines to stderr and, when File is set,
// JSON lines to a rotated file.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg)
	if err != nil {
		return nil, err
	}
	logLevel := zap.NewAtomicLevelAt(level)

	developmentCfg := zap.NewDevelopmentEncoderConfig()
	developmentCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	developmentCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(developmentCfg), zapcore.Lock(os.Stderr), logLevel),
	}

	if cfg.File != "" {
		fileCore, err := newFileCore(cfg, logLevel)
		if err != nil {
			return nil, err
		}
		cores = append(cores, fileCore)
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func newFileCore(cfg Config, level zap.AtomicLevel) (zapcore.Core, error) {
	maxSize, maxBackups, maxAge := cfg.MaxSize, cfg.MaxBackups, cfg.MaxAge
	if maxSize <= 0 {
		maxSize = 5
	}
	if maxBackups <= 0 {
		maxBackups = 10
	}
	if maxAge <= 0 {
		maxAge = 14
	}

	fileHandler, err := lumberjack.New(
		lumberjack.WithFileName(cfg.File),
		lumberjack.WithMaxBytes(int64(maxSize*1024*1024)),
		lumberjack.WithMaxBackups(maxBackups),
		lumberjack.WithMaxDays(maxAge),
		lumberjack.WithCompress(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create log file handler")
	}

	productionCfg := zap.NewProductionEncoderConfig()
	productionCfg.TimeKey = "timestamp"
	productionCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(productionCfg), zapcore.AddSync(fileHandler), level), nil
}

func parseLevel(cfg Config) (zapcore.Level, error) {
	if cfg.Level == "" {
		if cfg.Development {
			return zap.DebugLevel, nil
		}
		return zap.InfoLevel, nil
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.InfoLevel, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}
	return level, nil
}
