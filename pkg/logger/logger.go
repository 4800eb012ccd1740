// Package logger provides opinionated logging capabilities for tabagent.
//
// Logs go to stderr by default: stdout is reserved for streamed agent output.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(debug bool) *zap.Logger {
	return NewLoggerWithWriters(debug, os.Stderr)
}

// NewServerLogger is for long running foreground servers, which also show
// info level lifecycle logs.
func NewServerLogger(debug bool) *zap.Logger {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	return newLogger(level, os.Stderr)
}

func NewLoggerWithWriters(debug bool, writers ...io.Writer) *zap.Logger {
	// Outside debug mode only warnings and errors are shown, so that log
	// lines do not interleave with the streamed answer.
	level := zap.WarnLevel
	if debug {
		level = zap.DebugLevel
	}
	return newLogger(level, writers...)
}

func newLogger(level zapcore.Level, writers ...io.Writer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	if len(writers) == 0 {
		writers = []io.Writer{os.Stderr}
	}

	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, writer := range writers {
		syncers = append(syncers, zapcore.AddSync(writer))
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(syncers...),
		level,
	)

	return zap.New(core, zap.AddCaller())
}

// Nop returns a logger that discards everything. Used by tests and library
// callers that do not want tabagent logs.
func Nop() *zap.Logger {
	return zap.NewNop()
}
