// Package logging provides the structured logger shared by every package in
// tierroute. It wraps zap the same way codeNERD's CLI entry point wires it
// up (zap.NewProductionConfig, a debug atomic level override), but exposes
// one *zap.SugaredLogger per component instead of a single global logger so
// call sites read "router", "classify", "native/fs", etc. in their fields.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.RWMutex
	base     *zap.Logger
	debug    bool
	initOnce sync.Once
)

// Init builds the process-wide zap base logger. Safe to call more than
// once; only the first call takes effect unless Reconfigure is used.
func Init(debugMode bool, jsonFormat bool) error {
	var err error
	initOnce.Do(func() {
		err = reconfigure(debugMode, jsonFormat)
	})
	return err
}

// Reconfigure rebuilds the base logger, e.g. after a config hot-reload.
func Reconfigure(debugMode bool, jsonFormat bool) error {
	return reconfigure(debugMode, jsonFormat)
}

func reconfigure(debugMode bool, jsonFormat bool) error {
	cfg := zap.NewProductionConfig()
	if debugMode {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if !jsonFormat {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	if base != nil {
		_ = base.Sync()
	}
	base = built
	debug = debugMode
	mu.Unlock()
	return nil
}

// For returns a sugared logger scoped to the named component, e.g.
// logging.For("router"). If Init hasn't been called yet, a no-op-safe
// development logger is used instead so packages never nil-panic in tests.
func For(component string) *zap.SugaredLogger {
	mu.RLock()
	l := base
	mu.RUnlock()

	if l == nil {
		l, _ = zap.NewDevelopment()
	}
	return l.Sugar().With("component", component)
}

// IsDebug reports whether the logger was configured in debug mode.
func IsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debug
}

// Sync flushes any buffered log entries. Callers should defer this once at
// process shutdown, mirroring the teacher's PersistentPostRun logger.Sync().
func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l != nil {
		_ = l.Sync()
	}
}
