// Package logger wires zap with file rotation for the whole process.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu    sync.RWMutex
	sugar *zap.SugaredLogger
)

// Config controls log level and optional rotating file output.
type Config struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Init builds the process logger. With an empty file path logs go to
// stderr only; otherwise they are duplicated into a rotating file.
func Init(config Config) error {
	level := zapcore.InfoLevel
	if config.Level != "" {
		if err := level.Set(config.Level); err != nil {
			return err
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}
	if config.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)

	mu.Lock()
	sugar = zap.New(core).Sugar()
	mu.Unlock()
	return nil
}

// S returns the process logger. Before Init it returns a console
// logger at info level so library code can always log.
func S() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if sugar == nil {
		return fallback()
	}
	return sugar
}

var (
	fallbackOnce  sync.Once
	fallbackSugar *zap.SugaredLogger
)

func fallback() *zap.SugaredLogger {
	fallbackOnce.Do(func() {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			zapcore.InfoLevel,
		)
		fallbackSugar = zap.New(core).Sugar()
	})
	return fallbackSugar
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
