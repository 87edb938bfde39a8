package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agentstudio/lib/mycontext"
	"github.com/MarcGrol/agentstudio/lib/myerrors"
	"github.com/MarcGrol/agentstudio/lib/myevents"
	"github.com/MarcGrol/agentstudio/lib/myhttp"
	"github.com/MarcGrol/agentstudio/lib/mylog"
	"github.com/MarcGrol/agentstudio/lib/mypubsub"
	"github.com/MarcGrol/agentstudio/lib/myqueue"
	"github.com/MarcGrol/agentstudio/lib/mystore"
	"github.com/MarcGrol/agentstudio/lib/mytime"
)

type transactionalPublisher struct {
	outbox    mystore.Store[myevents.EventEnvelope]
	queue     myqueue.TaskQueuer
	enveloper enveloper
	pubsub    mypubsub.PubSub
	logger    mylog.Logger
}

// New returns a publisher that stores events in an outbox first and pushes them to pubsub
// when the queued trigger arrives.
func New(c context.Context, pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower) (*transactionalPublisher, func(), error) {
	store, storeCleanup, err := mystore.New[myevents.EventEnvelope](c)
	if err != nil {
		return nil, nil, err
	}

	return newTransactionalPublisher(store, pubsub, queue, nower), storeCleanup, nil
}

func newTransactionalPublisher(outbox mystore.Store[myevents.EventEnvelope], pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower) *transactionalPublisher {
	return &transactionalPublisher{
		outbox:    outbox,
		queue:     queue,
		enveloper: newEnveloper(nower),
		pubsub:    pubsub,
		logger:    mylog.New("publisher"),
	}
}

func (p *transactionalPublisher) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/pubsub/{topic}/{uid}", p.processTriggerPage()).Methods("PUT")
}

func (p *transactionalPublisher) CreateTopic(c context.Context, topicName string) error {
	return p.pubsub.CreateTopic(c, topicName)
}

func (p *transactionalPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	envelope, err := p.enveloper.do(topic, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}
	err = p.outbox.Put(c, envelope.UID, envelope)
	if err != nil {
		return fmt.Errorf("error storing envelope: %s", err)
	}

	err = p.queue.Enqueue(c, myqueue.Task{
		UID:            envelope.UID,
		WebhookURLPath: fmt.Sprintf("/pubsub/%s/%s", envelope.Topic, envelope.UID),
		Payload:        []byte{},
	})
	if err != nil {
		return fmt.Errorf("error queueing publication-trigger %s: %s", envelope.UID, err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Enqueued event %s", envelope.String())

	return nil
}

func (p *transactionalPublisher) processTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(p.logger)

		envelopeUID := mux.Vars(r)["uid"]
		err := p.processTrigger(c, envelopeUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: fmt.Sprintf("Successfully processed trigger %s", envelopeUID),
		})
	}
}

// processTrigger pushes a single outbox entry to pubsub; a redelivered trigger is a no-op.
func (p *transactionalPublisher) processTrigger(c context.Context, envelopeUID string) error {
	return p.outbox.RunInTransaction(c, func(c context.Context) error {
		envelope, exists, err := p.outbox.Get(c, envelopeUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching envelope %s: %s", envelopeUID, err))
		}
		if !exists {
			return myerrors.NewNotFoundError(fmt.Errorf("envelope %s not found", envelopeUID))
		}
		if envelope.Published {
			return nil
		}

		jsonBytes, err := json.Marshal(envelope)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error serializing envelope %s: %s", envelopeUID, err))
		}

		err = p.pubsub.Publish(c, envelope.Topic, string(jsonBytes))
		if err != nil {
			return myerrors.NewBadGatewayError(fmt.Errorf("error publishing envelope %s: %s", envelopeUID, err))
		}

		envelope.Published = true
		err = p.outbox.Put(c, envelope.UID, envelope)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error marking envelope %s published: %s", envelopeUID, err))
		}

		p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Published event %s", envelope.String())

		return nil
	})
}
