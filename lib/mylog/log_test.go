package mylog

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSeverityToLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, toLevel(SeverityDebug))
	assert.Equal(t, zerolog.InfoLevel, toLevel(SeverityInfo))
	assert.Equal(t, zerolog.WarnLevel, toLevel(SeverityWarn))
	assert.Equal(t, zerolog.ErrorLevel, toLevel(SeverityError))
	assert.Equal(t, zerolog.InfoLevel, toLevel(Severity("unknown")))
}

func TestGcloudLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newGcloudLogger(buf, "oauth")

	logger.Log(context.TODO(), "browser1", SeverityWarn, "state mismatch for %s", "browser1")

	assert.JSONEq(t, `{"component":"oauth","severity":"WARN","logging.googleapis.com/labels":{"aggregate":"browser1"},"message":"state mismatch for browser1"}`, buf.String())
}
