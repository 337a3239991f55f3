package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/securelink/internal/analytics"
	"github.com/serroba/securelink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSubscriber struct {
	mu           sync.Mutex
	channels     map[string]chan *message.Message
	subscribeErr error
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{channels: make(map[string]chan *message.Message)}
}

func (m *mockSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *message.Message, 10)
	m.channels[topic] = ch

	return ch, nil
}

func (m *mockSubscriber) send(topic string, msg *message.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.channels[topic] <- msg
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true

		for _, ch := range m.channels {
			close(ch)
		}
	}

	return nil
}

func newEventMessage(t *testing.T, event any) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(watermill.NewUUID(), payload)
}

func TestConsumer(t *testing.T) {
	t.Run("decodes and acks handled events", func(t *testing.T) {
		sub := newMockSubscriber()

		var (
			mu       sync.Mutex
			received []*analytics.LinkGeneratedEvent
		)

		consumer := messaging.NewConsumer(sub, analytics.TopicLinkGenerated,
			func(_ context.Context, event *analytics.LinkGeneratedEvent) error {
				mu.Lock()
				defer mu.Unlock()

				received = append(received, event)

				return nil
			}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		msg := newEventMessage(t, &analytics.LinkGeneratedEvent{EventID: "e1", Code: "aZ3_x9Qk"})
		sub.send(analytics.TopicLinkGenerated, msg)

		select {
		case <-msg.Acked():
		case <-time.After(time.Second):
			t.Fatal("expected message to be acked")
		}

		mu.Lock()
		require.Len(t, received, 1)
		assert.Equal(t, "aZ3_x9Qk", received[0].Code)
		mu.Unlock()

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("nacks malformed payloads", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(sub, analytics.TopicLinkResolved,
			func(_ context.Context, _ *analytics.LinkResolvedEvent) error {
				t.Error("handler should not run for malformed payloads")

				return nil
			}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
		sub.send(analytics.TopicLinkResolved, msg)

		select {
		case <-msg.Nacked():
		case <-time.After(time.Second):
			t.Fatal("expected message to be nacked")
		}

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("nacks events the handler rejects", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(sub, analytics.TopicLinkResolved,
			func(_ context.Context, _ *analytics.LinkResolvedEvent) error {
				return errors.New("store down")
			}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		msg := newEventMessage(t, &analytics.LinkResolvedEvent{EventID: "e2", Code: "x"})
		sub.send(analytics.TopicLinkResolved, msg)

		select {
		case <-msg.Nacked():
		case <-time.After(time.Second):
			t.Fatal("expected message to be nacked")
		}

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("start fails when subscribe fails", func(t *testing.T) {
		sub := newMockSubscriber()
		sub.subscribeErr = errors.New("broker down")

		consumer := messaging.NewConsumer(sub, analytics.TopicLinkGenerated,
			func(_ context.Context, _ *analytics.LinkGeneratedEvent) error { return nil },
			zap.NewNop())

		assert.Error(t, consumer.Start(context.Background()))
	})
}
