package logging

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Loggers default to no-ops so packages can log before InitLogger runs (tests, library use).
var (
	AppLogger   = zap.NewNop()
	TimerLogger = zap.NewNop()
	ErrorLogger = zap.NewNop()
)

type traceKey struct{}

// WithRunID tags ctx so LogDuration can attach the run to timer entries.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, traceKey{}, runID)
}

func RunID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// InitLogger wires the console progress output and the rotated log files under dir.
// If dir cannot be created the console output is still set up and the error returned.
func InitLogger(dir string) error {
	consoleEncoderConfig := zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeTime:       zapcore.TimeEncoderOfLayout("[2006-01-02 15:04:05]"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.Lock(os.Stdout), zap.InfoLevel)

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		AppLogger = zap.New(consoleCore)
		return err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	// app.log plus stdout
	appCore := zapcore.NewTee(
		consoleCore,
		zapcore.NewCore(encoder,
			zapcore.AddSync(&lumberjack.Logger{
				Filename: filepath.Join(dir, "app.log"), MaxSize: 100, MaxAge: 28, Compress: true,
			}),
			zap.InfoLevel,
		),
	)
	AppLogger = zap.New(appCore)

	timerCore := zapcore.NewCore(encoder,
		zapcore.AddSync(&lumberjack.Logger{
			Filename: filepath.Join(dir, "timer.log"), MaxSize: 50, MaxAge: 7, Compress: true,
		}),
		zap.InfoLevel,
	)
	TimerLogger = zap.New(timerCore)

	errorCore := zapcore.NewCore(encoder,
		zapcore.AddSync(&lumberjack.Logger{
			Filename: filepath.Join(dir, "error.log"), MaxSize: 100, MaxAge: 30, Compress: true,
		}),
		zap.ErrorLevel,
	)
	ErrorLogger = zap.New(errorCore)

	return nil
}

// Sync flushes every logger. Errors from syncing stdout are expected on some platforms and ignored.
func Sync() {
	_ = AppLogger.Sync()
	_ = TimerLogger.Sync()
	_ = ErrorLogger.Sync()
}

// LogDuration lets you do: defer logging.LogDuration(ctx, "FuncName")()
func LogDuration(ctx context.Context, name string) func() {
	start := time.Now()
	runID := RunID(ctx)

	return func() {
		fields := []zap.Field{
			zap.String("func", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if runID != "" {
			fields = append(fields, zap.String("run_id", runID))
		}
		TimerLogger.Info("Function timed", fields...)
	}
}
