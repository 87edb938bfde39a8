package mypublisher

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/MarcGrol/agentstudio/lib/myevents"
	"github.com/MarcGrol/agentstudio/lib/mytime"
)

type enveloper struct {
	nower mytime.Nower
}

func newEnveloper(nower mytime.Nower) enveloper {
	return enveloper{
		nower: nower,
	}
}

// do wraps an event in an envelope whose UID is derived from topic, type and payload.
// Publishing the same event twice yields one envelope; events of separate attempts
// must therefore differ in their payload (see the EventUID/AttemptUID fields).
func (e enveloper) do(topic string, event myevents.Event) (myevents.EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error marshalling %s: %s", event.GetEventTypeName(), err)
	}

	return myevents.EventEnvelope{
		UID:           envelopeUID(topic, event.GetEventTypeName(), payload),
		CreatedAt:     e.nower.Now(),
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	}, nil
}

func envelopeUID(topic string, eventTypeName string, payload []byte) string {
	digest := sha256.New()
	fmt.Fprintf(digest, "%s\n%s\n", topic, eventTypeName)
	digest.Write(payload)
	return base64.RawURLEncoding.EncodeToString(digest.Sum(nil))
}
