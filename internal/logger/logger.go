package logger

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Warnings and errors are also reported to
// Sentry when sentryDSN is set.
func New(level, sentryDSN string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	if sentryDSN != "" {
		sentryOption, err := Sentry(sentryDSN)
		if err != nil {
			return nil, err
		}
		zapLogger = zapLogger.WithOptions(sentryOption)
	}

	return zapLogger.Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func Sentry(dsn string) (zap.Option, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn: dsn,
	})
	if err != nil {
		return nil, err
	}

	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.RegisterHooks(core, func(entry zapcore.Entry) error {
			if entry.Level >= zapcore.WarnLevel {
				sentry.CaptureEvent(&sentry.Event{
					Timestamp: entry.Time,
					Logger:    entry.LoggerName,
					Message:   entry.Message,
					Extra: map[string]any{
						"Stack":  entry.Stack,
						"Caller": entry.Caller.String(),
					},
					Level: SentryLevel(entry.Level),
				})
			}

			return nil
		})
	}), nil
}

func SentryLevel(zapLevel zapcore.Level) sentry.Level {
	switch zapLevel {
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return sentry.LevelFatal
	}

	return sentry.LevelInfo
}
