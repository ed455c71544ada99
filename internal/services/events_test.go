package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/careerlens/apiserver/internal/mq"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[uuid.UUID][]any
}

func (n *recordingNotifier) Notify(userID uuid.UUID, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.calls == nil {
		n.calls = map[uuid.UUID][]any{}
	}
	n.calls[userID] = append(n.calls[userID], payload)
}

func (n *recordingNotifier) count(userID uuid.UUID) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls[userID])
}

func TestDispatcherNotifiesRecipientsAndPublishes(t *testing.T) {
	bus := mq.New(mq.NewMemoryBackend())
	defer bus.Close()
	notifier := &recordingNotifier{}
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(bus, notifier, logger)

	seeker, employer := uuid.New(), uuid.New()
	d.Publish(context.Background(), types.Event{
		Type:          types.EventStatusChanged,
		ApplicationID: uuid.New(),
		SeekerID:      seeker,
		EmployerID:    employer,
		Status:        types.StatusSelected,
	})

	assert.Equal(t, 1, notifier.count(seeker))
	assert.Equal(t, 0, notifier.count(employer))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	received := make(chan mq.Message, 1)
	go func() {
		_ = bus.Subscribe(ctx, mq.ChannelApplicationEvents, func(_ context.Context, msg mq.Message) error {
			received <- msg
			return nil
		})
	}()

	select {
	case msg := <-received:
		var event types.Event
		require.NoError(t, json.Unmarshal(msg.Data, &event))
		assert.Equal(t, types.EventStatusChanged, event.Type)
		assert.False(t, event.OccurredAt.IsZero())
		assert.Equal(t, string(types.EventStatusChanged), msg.Attributes["event_type"])
	case <-ctx.Done():
		t.Fatal("event not published")
	}
}

func TestDispatcherSwallowsPublishFailures(t *testing.T) {
	backend := mq.NewMemoryBackend()
	bus := mq.New(backend)
	require.NoError(t, bus.Close())
	logger, hook := test.NewNullLogger()
	d := NewDispatcher(bus, nil, logger)

	d.Publish(context.Background(), types.Event{Type: types.EventApplicationSubmitted, EmployerID: uuid.New()})

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestDispatcherRequestMatchWithoutBus(t *testing.T) {
	d := NewDispatcher(nil, nil, logrus.New())
	assert.False(t, d.HasBus())
	err := d.RequestMatch(context.Background(), types.MatchRequest{ApplicationID: uuid.New()})
	assert.ErrorIs(t, err, ErrUnavailable)
}
