package logger

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const loggerKey = contextKey("logger")

// Config controls where and how verbosely the console logs.
type Config struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

var (
	mu           sync.RWMutex
	globalLogger *zap.SugaredLogger
)

// Init builds the process-wide logger. Without a path it writes to stdout.
func Init(cfg Config) {
	writeSyncer := zapcore.AddSync(os.Stdout)

	var dirErr error
	if cfg.Path != "" {
		if dirErr = os.MkdirAll(filepath.Dir(cfg.Path), 0o755); dirErr == nil {
			writeSyncer = zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.Path,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			})
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil || cfg.Level == "" {
		level = zapcore.InfoLevel
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)
	l := zap.New(core, zap.AddCaller()).Sugar()

	mu.Lock()
	globalLogger = l
	mu.Unlock()

	if dirErr != nil {
		l.Warnf("failed to create log directory, logging to stdout: %v", dirErr)
	}
	l.Infof("logging initialized (level=%s path=%q)", level, cfg.Path)
}

// Sync flushes buffered entries.
func Sync() error {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l.Sync()
	}
	return nil
}

// Get returns the logger stored in ctx, falling back to the global one.
func Get(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok {
			return l
		}
	}
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewExample().Sugar()
		}
		globalLogger = dev.Sugar()
	}
	return globalLogger
}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}
