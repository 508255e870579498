// Package logger provides the process-wide logger. Output goes to stderr so
// the stdio transport keeps stdout for protocol frames.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugared = newLogger(zapcore.Lock(os.Stderr)).Sugar()
)

func newLogger(out zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), out, level)
	return zap.New(core)
}

// SetVerbose toggles debug level output
func SetVerbose(verbose bool) {
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}

// SetOutput redirects log output, mainly for tests
func SetOutput(out zapcore.WriteSyncer) {
	mu.Lock()
	defer mu.Unlock()
	sugared = newLogger(out).Sugar()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugared
}

func Debugf(format string, args ...interface{}) {
	get().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	get().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	get().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	get().Errorf(format, args...)
}

// Sync flushes buffered entries
func Sync() {
	_ = get().Sync()
}
