package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/securelink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunnable struct {
	startErr    error
	shutdownErr error
	started     bool
	stopped     bool
}

func (f *fakeRunnable) Start(_ context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	f.started = true

	return nil
}

func (f *fakeRunnable) Shutdown() error {
	f.stopped = true

	return f.shutdownErr
}

func TestConsumerGroup(t *testing.T) {
	t.Run("starts and stops all consumers", func(t *testing.T) {
		sub := newMockSubscriber()
		group := messaging.NewConsumerGroup(sub, zap.NewNop())

		first := &fakeRunnable{}
		second := &fakeRunnable{}
		group.Add(first)
		group.Add(second)

		require.NoError(t, group.Start(context.Background()))
		assert.True(t, first.started)
		assert.True(t, second.started)

		require.NoError(t, group.Shutdown())
		assert.True(t, first.stopped)
		assert.True(t, second.stopped)
		assert.True(t, sub.closed)
	})

	t.Run("start failure shuts down already started consumers", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())

		first := &fakeRunnable{}
		failing := &fakeRunnable{startErr: errors.New("boom")}
		group.Add(first)
		group.Add(failing)

		err := group.Start(context.Background())

		assert.Error(t, err)
		assert.True(t, first.stopped)
	})

	t.Run("shutdown reports the first consumer error", func(t *testing.T) {
		sub := newMockSubscriber()
		group := messaging.NewConsumerGroup(sub, zap.NewNop())

		failing := &fakeRunnable{shutdownErr: errors.New("first")}
		alsoFailing := &fakeRunnable{shutdownErr: errors.New("second")}
		group.Add(failing)
		group.Add(alsoFailing)

		require.NoError(t, group.Start(context.Background()))

		err := group.Shutdown()

		assert.EqualError(t, err, "first")
		assert.True(t, alsoFailing.stopped)
	})
}
