// Package messaging provides thin typed wrappers around watermill publishers
// and subscribers for link usage events.
package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publish is a function that publishes a typed event.
type Publish[T any] func(event *T) error

// NewPublishFunc creates a typed publish function bound to a topic.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event for %s: %w", topic, err)
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)

		return publisher.Publish(topic, msg)
	}
}

// PublisherGroup owns the underlying publisher so the container can shut it
// down once, regardless of how many typed publish functions were derived
// from it.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup creates a new publisher group.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher returns the underlying message publisher.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the underlying publisher.
func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
