// Package logging provides the engine's structured logging interface,
// backed by zap. The interface shape mirrors the teacher's plugin
// Logger (printf-style Debug/Info/Warn/Error).
package logging

import "go.uber.org/zap"

// Logger is the logging interface every package in this module
// depends on, never *zap.Logger directly.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// zapLogger adapts a *zap.SugaredLogger to Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a production zap-backed Logger.
func New() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: z.Sugar()}, nil
}

// NewDevelopment builds a development zap-backed Logger (human-readable,
// colorized console output), used by cmd/autosv when run interactively.
func NewDevelopment() (Logger, error) {
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: z.Sugar()}, nil
}

func (l *zapLogger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// noOpLogger discards everything, used by tests and library callers
// that don't want log output.
type noOpLogger struct{}

// NewNoOp returns a Logger that discards all output.
func NewNoOp() Logger { return noOpLogger{} }

func (noOpLogger) Debug(format string, args ...interface{}) {}
func (noOpLogger) Info(format string, args ...interface{})  {}
func (noOpLogger) Warn(format string, args ...interface{})  {}
func (noOpLogger) Error(format string, args ...interface{}) {}
