package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// base reports the caller of its own methods; helper wraps it for the
// package-level functions below, which add one frame.
var (
	mu     sync.RWMutex
	base   *zap.Logger
	helper *zap.Logger
)

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	Set(l)
}

// Init replaces the package logger. env "production" selects the JSON encoder,
// anything else the console encoder.
func Init(level, env, service string) error {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(
		zap.Fields(zap.String("service", service), zap.String("environment", env)),
	)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Set(l)
	return nil
}

// Set swaps the underlying logger, mainly for tests (zaptest/observer).
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	helper = l.WithOptions(zap.AddCallerSkip(1))
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func h() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return helper
}

func Sync() {
	_ = L().Sync()
}

// With returns a child logger carrying fields, for call sites that log several lines.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

func Info(msg string, fields ...zap.Field) {
	h().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	h().Warn(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	h().Debug(msg, fields...)
}

func Error(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	h().Error(msg, fields...)
}
