// Package logger provides a zap-based application logger that pulls request
// scoped fields out of the context.
package logger

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a Logger writes.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a LOG_LEVEL value into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// TraceIDFn extracts a trace id from the context, or "" when there is none.
type TraceIDFn func(ctx context.Context) string

// Logger writes JSON entries tagged with the service name and trace id.
type Logger struct {
	z       *zap.SugaredLogger
	traceID TraceIDFn
}

// New builds a Logger writing to w at the given level.
func New(w io.Writer, level Level, service string, traceID TraceIDFn) *Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), level.zap())
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(zap.String("service", service))
	return &Logger{z: z.Sugar(), traceID: traceID}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

func (l *Logger) fields(ctx context.Context, kv []any) []any {
	if l.traceID == nil || ctx == nil {
		return kv
	}
	if id := l.traceID(ctx); id != "" {
		return append([]any{"trace_id", id}, kv...)
	}
	return kv
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.z.Debugw(msg, l.fields(ctx, kv)...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.z.Infow(msg, l.fields(ctx, kv)...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.z.Warnw(msg, l.fields(ctx, kv)...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.z.Errorw(msg, l.fields(ctx, kv)...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
