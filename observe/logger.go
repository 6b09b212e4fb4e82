package observe

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level. Unknown values map to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// FileConfig enables rotated file output.
type FileConfig struct {
	// Path is the log file. Its directory is created if missing.
	Path string

	// MaxSizeMB is the size that triggers rotation. Default: 10
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept. Default: 5
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept. Default: 14
	MaxAgeDays int

	// Compress gzips rotated files.
	Compress bool
}

// zapLogger is the zap-backed Logger.
type zapLogger struct {
	z *zap.Logger
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "msg"
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey
	return cfg
}

// NewLogger creates a JSON logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a JSON logger writing to w.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		ParseLogLevel(level).zapLevel(),
	)
	return &zapLogger{z: zap.New(core)}
}

// NewFileLogger creates a JSON logger writing to a rotated file and, when
// tee is true, to stderr as well.
func NewFileLogger(level string, file FileConfig, tee bool) (Logger, error) {
	if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
		return nil, err
	}
	if file.MaxSizeMB <= 0 {
		file.MaxSizeMB = 10
	}
	if file.MaxBackups <= 0 {
		file.MaxBackups = 5
	}
	if file.MaxAgeDays <= 0 {
		file.MaxAgeDays = 14
	}

	ws := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAgeDays,
		Compress:   file.Compress,
	})
	if tee {
		ws = zapcore.NewMultiWriteSyncer(ws, zapcore.Lock(os.Stderr))
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), ws, ParseLogLevel(level).zapLevel())
	return &zapLogger{z: zap.New(core)}, nil
}

// NewZapLogger adapts an existing zap logger.
func NewZapLogger(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

// WithProbe returns a logger with probe context attached.
func (l *zapLogger) WithProbe(meta ProbeMeta) Logger {
	fields := []zap.Field{
		zap.String("probe.name", meta.Name),
		zap.Bool("probe.critical", meta.Critical),
	}
	if len(meta.Groups) > 0 {
		fields = append(fields, zap.Strings("probe.groups", meta.Groups))
	}
	return &zapLogger{z: l.z.With(fields...)}
}

// With returns a logger carrying fields on every entry.
func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(toZap(fields)...)}
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.z.Info(msg, toZap(fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.z.Warn(msg, toZap(fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.z.Error(msg, toZap(fields)...)
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.z.Debug(msg, toZap(fields)...)
}

// Sync flushes buffered entries.
func (l *zapLogger) Sync() error {
	return l.z.Sync()
}

func toZap(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		if isRedactedField(f.Key) {
			out[i] = zap.String(f.Key, "[REDACTED]")
			continue
		}
		if err, ok := f.Value.(error); ok {
			out[i] = zap.String(f.Key, err.Error())
			continue
		}
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}

// isRedactedField reports whether the field may carry credentials.
func isRedactedField(key string) bool {
	k := strings.ToLower(key)
	for _, r := range RedactedFields {
		if k == strings.ToLower(r) {
			return true
		}
	}
	return false
}

// Syncer is implemented by loggers that buffer output.
type Syncer interface {
	Sync() error
}

var (
	_ Logger = (*zapLogger)(nil)
	_ Syncer = (*zapLogger)(nil)
)
