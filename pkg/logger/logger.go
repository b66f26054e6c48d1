package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps a level name such as "debug" or "WARN" to a LogLevel.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "FATAL":
		return FATAL, true
	}
	return INFO, false
}

// Logger is a levelled logger backed by a zap SugaredLogger.
type Logger struct {
	mu       sync.Mutex
	level    zap.AtomicLevel
	out      io.Writer
	colorize bool
	json     bool
	sugar    *zap.SugaredLogger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

type Config struct {
	Level    LogLevel
	Colorize bool
	JSON     bool // structured JSON lines instead of console text
	Output   io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:    INFO,
		Colorize: true,
		Output:   os.Stderr,
	}
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	l := &Logger{
		level:    zap.NewAtomicLevelAt(cfg.Level.zapLevel()),
		out:      cfg.Output,
		colorize: cfg.Colorize,
		json:     cfg.JSON,
	}
	l.build()
	return l
}

// build must be called with mu held or before l is shared.
func (l *Logger) build() {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	var enc zapcore.Encoder
	if l.json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if l.colorize {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encCfg.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(l.out), l.level)
	l.sugar = zap.New(core, zap.AddCallerSkip(1)).Sugar()
}

// GetLogger returns the process-wide logger. LOG_LEVEL selects its initial
// level.
func GetLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		if lvl, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
			cfg.Level = lvl
		}
		defaultLogger = New(cfg)
	})
	return defaultLogger
}

// Init configures the process-wide logger for a command: debug lowers the level
// to DEBUG, otherwise LOG_LEVEL or INFO applies.
func Init(debug bool) {
	l := GetLogger()
	if debug {
		l.SetLevel(DEBUG)
	}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

func (l *Logger) Enabled(level LogLevel) bool {
	return l.level.Enabled(level.zapLevel())
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	l.build()
}

func (l *Logger) SetColorize(colorize bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colorize = colorize
	l.build()
}

func (l *Logger) SetJSON(json bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.json = json
	l.build()
}

func (l *Logger) s() *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sugar
}

// Zap exposes the underlying logger for libraries that take a *zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.s().Desugar()
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.s().Sync()
}

func (l *Logger) Debugf(format string, args ...any) { l.s().Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.s().Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.s().Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.s().Errorf(format, args...) }
func (l *Logger) Fatalf(format string, args ...any) { l.s().Fatalf(format, args...) }

// Debugw logs msg with alternating key/value pairs.
func (l *Logger) Debugw(msg string, kv ...any) { l.s().Debugw(msg, kv...) }
func (l *Logger) Infow(msg string, kv ...any)  { l.s().Infow(msg, kv...) }
func (l *Logger) Warnw(msg string, kv ...any)  { l.s().Warnw(msg, kv...) }
func (l *Logger) Errorw(msg string, kv ...any) { l.s().Errorw(msg, kv...) }

// Package-level convenience functions using the default logger

func Debugf(format string, args ...any) { GetLogger().Debugf(format, args...) }
func Infof(format string, args ...any)  { GetLogger().Infof(format, args...) }
func Warnf(format string, args ...any)  { GetLogger().Warnf(format, args...) }
func Errorf(format string, args ...any) { GetLogger().Errorf(format, args...) }
func Fatalf(format string, args ...any) { GetLogger().Fatalf(format, args...) }

func Infow(msg string, kv ...any) { GetLogger().Infow(msg, kv...) }
func Warnw(msg string, kv ...any) { GetLogger().Warnw(msg, kv...) }

func SetLevel(level LogLevel) { GetLogger().SetLevel(level) }

func SetOutput(w io.Writer) { GetLogger().SetOutput(w) }

// Sync flushes the default logger.
func Sync() error { return GetLogger().Sync() }
