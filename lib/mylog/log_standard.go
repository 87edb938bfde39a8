package mylog

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newStandardLogger
	}
}

type standardLogger struct {
	logger zerolog.Logger
}

func newStandardLogger(componentName string) Logger {
	return standardLogger{
		logger: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Str("component", componentName).
			Logger(),
	}
}

func (l standardLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	event := l.logger.WithLevel(toLevel(severity))
	if traceLabel != "" {
		event = event.Str("label", traceLabel)
	}
	event.Msgf(format, a...)
}

func toLevel(severity Severity) zerolog.Level {
	switch severity {
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityWarn:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
