package mypubsub

import "context"

var New func(c context.Context) (PubSub, func(), error)

// PubSub carries serialized event envelopes to whoever listens on a topic.
type PubSub interface {
	CreateTopic(c context.Context, topic string) error
	Publish(c context.Context, topic string, data string) error
}
