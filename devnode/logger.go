package devnode

import (
	"os"
	"strings"

	"github.com/ava-labs/sleepy"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ sleepy.Logger = (*logger)(nil)

type logger struct {
	*zap.Logger
}

// NewLogger builds the daemon's console logger. Debug, Trace and Verbo
// output is suppressed unless debug is set.
func NewLogger(debug bool) sleepy.Logger {
	config := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	config.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(strings.ToUpper(l.String()))
	}
	config.EncodeTime = zapcore.TimeEncoderOfLayout("[01-02|15:04:05.000]")
	config.ConsoleSeparator = " "

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config),
		zapcore.AddSync(os.Stdout),
		zap.NewAtomicLevelAt(level),
	)

	return &logger{Logger: zap.New(core, zap.AddCaller())}
}

func (l *logger) Trace(msg string, fields ...zap.Field) {
	l.Logger.Log(zapcore.DebugLevel, msg, fields...)
}

func (l *logger) Verbo(msg string, fields ...zap.Field) {
	l.Logger.Log(zapcore.DebugLevel, msg, fields...)
}
