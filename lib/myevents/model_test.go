package myevents

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEventEnvelope(t *testing.T) {
	t.Run("Valid push request", func(t *testing.T) {
		envelopeBytes, err := json.Marshal(EventEnvelope{
			UID:           "123",
			Topic:         "oauth",
			AggregateUID:  "abc",
			EventTypeName: "oauth.signIn.completed",
			EventPayload:  `{"UserUID":"abc"}`,
		})
		assert.NoError(t, err)
		reqBytes, err := json.Marshal(PushRequest{
			Message:      PushMessage{Data: envelopeBytes},
			Subscription: "oauth",
		})
		assert.NoError(t, err)

		envelope, err := ParseEventEnvelope(strings.NewReader(string(reqBytes)))
		assert.NoError(t, err)
		assert.Equal(t, "oauth.oauth.signIn.completed.abc", envelope.String())
		assert.Equal(t, `{"UserUID":"abc"}`, envelope.EventPayload)
	})

	t.Run("Invalid push request", func(t *testing.T) {
		_, err := ParseEventEnvelope(strings.NewReader("{"))
		assert.Error(t, err)
	})
}
