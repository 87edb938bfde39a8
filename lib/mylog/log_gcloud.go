package mylog

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/MarcGrol/agentstudio/lib/mycontext"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = func(componentName string) Logger {
			return newGcloudLogger(os.Stdout, componentName)
		}
	}
}

// gcloudLogger writes one JSON line per entry in the format Cloud Logging picks up from stdout.
type gcloudLogger struct {
	logger zerolog.Logger
}

func newGcloudLogger(out io.Writer, componentName string) Logger {
	return gcloudLogger{
		logger: zerolog.New(out).With().Str("component", componentName).Logger(),
	}
}

func (l gcloudLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	event := l.logger.Log().Str("severity", string(severity))
	if trace := mycontext.TraceFromContext(ctx); trace != "" {
		event = event.Str("logging.googleapis.com/trace", trace)
	}
	if traceLabel != "" {
		event = event.Dict("logging.googleapis.com/labels", zerolog.Dict().Str("aggregate", traceLabel))
	}
	event.Msgf(format, a...)
}
