// Package logger provides the logging used across opsagent. It wraps zap with
// two extra levels, SUCCESS and FAIL, a human oriented console encoder and a
// JSON file sink rotated by lumberjack.
//
// Basic usage (global logger):
//
//	opts := logger.DefaultOptions()
//	opts.ConsoleLevel = logger.DebugLevel
//	logger.Init(opts)
//	defer logger.SyncGlobal()
//
//	logger.Info("executing plan with %d steps", n)
//	logger.Success("plan finished")
//
// Instance loggers carry fields:
//
//	log := logger.Get().With("run_id", runID)
//	log.With("step", 2, "action", "create_cluster").Warnf("unresolved placeholder %q", id)
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level defines the log level. SuccessLevel and FailLevel are rendered
// distinctively by the console encoder and map onto zap's Info and Fatal.
type Level int8

const (
	DebugLevel Level = iota - 1
	InfoLevel
	// SuccessLevel marks the successful completion of a significant operation.
	SuccessLevel
	WarnLevel
	ErrorLevel
	// FailLevel logs then exits the process with status 1.
	FailLevel
	PanicLevel
	FatalLevel
)

// customLevelKey carries our level through zap so the console encoder can
// tell SUCCESS from INFO.
const customLevelKey = "customlevel"

func (l Level) String() string {
	return strings.ToLower(l.CapitalString())
}

// CapitalString returns the upper-case label used in console output.
func (l Level) CapitalString() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case SuccessLevel:
		return "SUCCESS"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FailLevel:
		return "FAIL"
	case PanicLevel:
		return "PANIC"
	case FatalLevel:
		return "FATAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", l)
	}
}

// ToZapLevel converts our Level to zapcore.Level.
func (l Level) ToZapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel, SuccessLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case PanicLevel:
		return zapcore.PanicLevel
	case FailLevel, FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps a config string ("debug", "info", ...) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "success":
		return SuccessLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fail":
		return FailLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Options holds configuration for the logger.
type Options struct {
	ConsoleLevel Level
	FileLevel    Level
	// LogFilePath is required when FileOutput is true.
	LogFilePath   string
	ConsoleOutput bool
	FileOutput    bool
	ColorConsole  bool
	// ConsoleWriter defaults to os.Stderr; stdout is reserved for command output.
	ConsoleWriter io.Writer
	// MaxSizeMB and MaxBackups configure file rotation.
	MaxSizeMB       int
	MaxBackups      int
	TimestampFormat string
}

// Logger is a zap.SugaredLogger with our custom levels.
type Logger struct {
	*zap.SugaredLogger
	opts Options
}

var (
	globalLogger *Logger
	globalMu     sync.Mutex
)

// Init installs the global logger. Only the first call has effect. When the
// options cannot be honoured a plain development logger on stderr is used.
func Init(opts Options) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		return
	}
	l, err := NewLogger(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize global logger: %v. Falling back to basic console logging.\n", err)
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zl, _ := cfg.Build(zap.AddCallerSkip(1))
		l = &Logger{SugaredLogger: zl.Sugar(), opts: Options{ConsoleOutput: true, ConsoleLevel: InfoLevel}}
	}
	globalLogger = l
}

// Get returns the global logger, initializing it with DefaultOptions if Init
// was never called.
func Get() *Logger {
	globalMu.Lock()
	l := globalLogger
	globalMu.Unlock()
	if l != nil {
		return l
	}
	Init(DefaultOptions())
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalLogger
}

// DefaultOptions logs INFO and above to a colored console; file output is off.
func DefaultOptions() Options {
	return Options{
		ConsoleLevel:    InfoLevel,
		FileLevel:       DebugLevel,
		LogFilePath:     "opsagent.log",
		ConsoleOutput:   true,
		FileOutput:      false,
		ColorConsole:    true,
		MaxSizeMB:       50,
		MaxBackups:      3,
		TimestampFormat: time.RFC3339,
	}
}

// NewLogger builds a Logger from opts.
func NewLogger(opts Options) (*Logger, error) {
	var cores []zapcore.Core

	if opts.TimestampFormat == "" {
		opts.TimestampFormat = time.RFC3339
	}

	if opts.ConsoleOutput {
		w := opts.ConsoleWriter
		if w == nil {
			w = os.Stderr
		}
		cores = append(cores, zapcore.NewCore(
			NewConsoleEncoder(opts),
			zapcore.Lock(zapcore.AddSync(w)),
			levelEnabler(opts.ConsoleLevel),
		))
	}

	if opts.FileOutput {
		if opts.LogFilePath == "" {
			return nil, fmt.Errorf("log file path cannot be empty when file output is enabled")
		}
		fileEncoderCfg := zap.NewProductionEncoderConfig()
		fileEncoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(opts.TimestampFormat)
		fileEncoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

		rotator := &lumberjack.Logger{
			Filename:   opts.LogFilePath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderCfg),
			zapcore.AddSync(rotator),
			levelEnabler(opts.FileLevel),
		))
	}

	if len(cores) == 0 {
		return &Logger{SugaredLogger: zap.NewNop().Sugar(), opts: opts}, nil
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{SugaredLogger: zapLogger.Sugar(), opts: opts}, nil
}

// NewNop returns a logger that discards everything. Handy in tests.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// levelEnabler keeps SUCCESS visible whenever INFO is, since both are zap Info.
func levelEnabler(min Level) zap.LevelEnablerFunc {
	return func(lvl zapcore.Level) bool {
		return lvl >= min.ToZapLevel()
	}
}

func (l *Logger) logWithCustomLevel(level Level, template string, args ...interface{}) {
	if l == nil || l.SugaredLogger == nil {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", level.CapitalString(), fmt.Sprintf(template, args...))
		if level == FailLevel || level == FatalLevel {
			os.Exit(1)
		}
		return
	}

	msg := fmt.Sprintf(template, args...)
	lvlField := zap.String(customLevelKey, level.CapitalString())
	s := l.SugaredLogger.WithOptions(zap.AddCallerSkip(1))

	switch level {
	case DebugLevel:
		s.Debugw(msg, lvlField)
	case InfoLevel, SuccessLevel:
		s.Infow(msg, lvlField)
	case WarnLevel:
		s.Warnw(msg, lvlField)
	case ErrorLevel:
		s.Errorw(msg, lvlField)
	case PanicLevel:
		s.Panicw(msg, lvlField)
	case FailLevel, FatalLevel:
		s.Fatalw(msg, lvlField)
	default:
		s.Infow(msg, lvlField)
	}
}

func (l *Logger) Debugf(template string, args ...interface{}) {
	l.logWithCustomLevel(DebugLevel, template, args...)
}

func (l *Logger) Infof(template string, args ...interface{}) {
	l.logWithCustomLevel(InfoLevel, template, args...)
}

// Successf logs at SuccessLevel.
func (l *Logger) Successf(template string, args ...interface{}) {
	l.logWithCustomLevel(SuccessLevel, template, args...)
}

func (l *Logger) Warnf(template string, args ...interface{}) {
	l.logWithCustomLevel(WarnLevel, template, args...)
}

func (l *Logger) Errorf(template string, args ...interface{}) {
	l.logWithCustomLevel(ErrorLevel, template, args...)
}

// Failf logs at FailLevel and exits the process.
func (l *Logger) Failf(template string, args ...interface{}) {
	l.logWithCustomLevel(FailLevel, template, args...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil || l.SugaredLogger == nil {
		return nil
	}
	return l.SugaredLogger.Sync()
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		opts:          l.opts,
	}
}

func Debug(template string, args ...interface{}) {
	Get().logWithCustomLevel(DebugLevel, template, args...)
}

func Info(template string, args ...interface{}) {
	Get().logWithCustomLevel(InfoLevel, template, args...)
}

func Success(template string, args ...interface{}) {
	Get().logWithCustomLevel(SuccessLevel, template, args...)
}

func Warn(template string, args ...interface{}) {
	Get().logWithCustomLevel(WarnLevel, template, args...)
}

func Error(template string, args ...interface{}) {
	Get().logWithCustomLevel(ErrorLevel, template, args...)
}

func Fail(template string, args ...interface{}) {
	Get().logWithCustomLevel(FailLevel, template, args...)
}

// SyncGlobal flushes the global logger.
func SyncGlobal() error {
	return Get().Sync()
}
