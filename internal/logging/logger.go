// Package logging builds the zap logger used across the CLI. Output goes to
// stderr so stdout carries nothing but the generated commit message.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a level name onto a zap level, defaulting to warn.
func ParseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zapcore.WarnLevel
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.WarnLevel
	}
	return l
}

// ConsoleEncoderConfig is the compact console layout used for stderr output.
func ConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "T"
	cfg.LevelKey = "L"
	cfg.NameKey = "N"
	cfg.CallerKey = ""
	cfg.MessageKey = "M"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// New builds a console logger writing to w at the given level.
func New(w io.Writer, level string) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(ConsoleEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		ParseLevel(level),
	)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)).Named("autocommit")
}

// Init installs a stderr logger as the global zap and otelzap logger. The
// returned function flushes and restores the previous globals.
func Init(level string) func() {
	logger := New(os.Stderr, level)
	restoreZap := zap.ReplaceGlobals(logger)
	restoreOtel := otelzap.ReplaceGlobals(otelzap.New(logger))
	return func() {
		_ = logger.Sync()
		restoreOtel()
		restoreZap()
	}
}
