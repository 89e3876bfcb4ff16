package logging

import (
	"fmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"inkpress/internal/domain/config"
	"os"
	"path/filepath"
)

// New returns the program logger: console output split between stdout and
// stderr by level, plus an optional file copy of everything enabled.
func New(conf config.LoggingConfig, debug bool) (*zap.Logger, error) {
	level := conf.Level
	if debug {
		level = "debug"
	}

	var enabled zapcore.Level
	switch level {
	case "none":
		return zap.NewNop(), nil
	case "debug":
		enabled = zapcore.DebugLevel
	default:
		enabled = zapcore.InfoLevel
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(ec)

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return enabled <= lvl && lvl < zapcore.ErrorLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lowPriority),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), highPriority),
	}

	if dest := conf.Destination; dest != "" {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, fmt.Errorf("log destination: %w", err)
		}
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		fileEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(f), zap.NewAtomicLevelAt(enabled)))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// OrNop never hands back a nil logger.
func OrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
