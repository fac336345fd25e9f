// Package logging builds the zap loggers used across the runner.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File, when set, receives a plain JSON copy of every entry, rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Console overrides the colored stdout sink; tests pass a buffer.
	Console io.Writer
}

func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	consoleConfig := zap.NewDevelopmentEncoderConfig()
	consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	var console io.Writer = colorable.NewColorableStdout()
	if opts.Console != nil {
		consoleConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		console = opts.Console
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(zapcore.AddSync(console)), level),
	}

	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 25
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// ParseLevel maps a config string to a zap level; empty means info.
func ParseLevel(raw string) (zapcore.Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return zapcore.InfoLevel, nil
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", raw)
	}

	return level, nil
}

// ForAccount tags every entry with the account's 1-based label and wallet.
func ForAccount(logger *zap.Logger, label int, wallet string) *zap.Logger {
	return logger.With(zap.Int("account", label), zap.String("wallet", wallet))
}

// WithIP adds the egress address once the proxy check has resolved it.
func WithIP(logger *zap.Logger, ip string) *zap.Logger {
	return logger.With(zap.String("ip", ip))
}
