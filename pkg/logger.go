package pkg

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelErrOnly
	LogLevelDebug
)

var logger atomic.Pointer[zap.SugaredLogger]

func init() {
	logger.Store(newLogger(LogLevelErrOnly))
}

func newLogger(level LogLevel) *zap.SugaredLogger {
	if level == LogLevelNone {
		return zap.NewNop().Sugar()
	}

	min_level := zapcore.ErrorLevel
	if level == LogLevelDebug {
		min_level = zapcore.DebugLevel
	}

	enc_config := zap.NewDevelopmentEncoderConfig()
	enc_config.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc_config), zapcore.Lock(os.Stderr), min_level)

	// skip the wrapper functions below so callers show up in the output
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func SetLogLevel(level LogLevel) {
	prev := logger.Swap(newLogger(level))
	_ = prev.Sync()
	DebugLog("log level set to", level)
}

// Logger exposes the underlying logger for callers that want structured fields.
func Logger() *zap.SugaredLogger { return logger.Load() }

func InfoLog(args ...any)  { logger.Load().Infoln(args...) }
func ErrorLog(args ...any) { logger.Load().Errorln(args...) }
func FatalLog(args ...any) { logger.Load().Fatalln(args...) }
func WarnLog(args ...any)  { logger.Load().Warnln(args...) }
func DebugLog(args ...any) { logger.Load().Debugln(args...) }
