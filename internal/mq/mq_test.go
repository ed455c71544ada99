package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/careerlens/apiserver/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDisabled(t *testing.T) {
	bus, err := Open(context.Background(), config.MQConfig{})
	require.NoError(t, err)
	assert.Nil(t, bus)

	_, err = Open(context.Background(), config.MQConfig{Backend: "kafka"})
	assert.Error(t, err)
}

func TestMemoryPublishJSONRoundTrip(t *testing.T) {
	bus, err := Open(context.Background(), config.MQConfig{Backend: config.MQBackendMemory})
	require.NoError(t, err)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = bus.PublishJSON(ctx, ChannelMatchRequested, map[string]string{"hello": "world"}, nil)
	require.NoError(t, err)

	received := make(chan Message, 1)
	go func() {
		_ = bus.Subscribe(ctx, ChannelMatchRequested, func(_ context.Context, msg Message) error {
			received <- msg
			return nil
		})
	}()

	select {
	case msg := <-received:
		var payload map[string]string
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		assert.Equal(t, "world", payload["hello"])
		assert.Equal(t, "application/json", msg.Attributes["content-type"])
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}
}

func TestMemoryRedeliversOnceOnFailure(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := backend.Publish(ctx, "q", []byte("x"), nil)
	require.NoError(t, err)

	attempts := make(chan struct{}, 4)
	go func() {
		_ = backend.Subscribe(ctx, "q", func(context.Context, Message) error {
			attempts <- struct{}{}
			return errors.New("boom")
		})
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-attempts:
		case <-ctx.Done():
			t.Fatalf("attempt %d missing", i+1)
		}
	}
	select {
	case <-attempts:
		t.Fatal("message delivered more than twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryPublishAfterCloseFails(t *testing.T) {
	for i := 0; i < 200; i++ {
		backend := NewMemoryBackend()
		require.NoError(t, backend.Close())

		_, err := backend.Publish(context.Background(), "q", []byte("x"), nil)
		require.ErrorIs(t, err, errMemoryClosed, "attempt %d", i)
	}
}

func TestHeadersToAttributes(t *testing.T) {
	attrs := headersToAttributes(amqp.Table{"a": "x", "b": []byte("y"), "c": int32(3)})
	assert.Equal(t, map[string]string{"a": "x", "b": "y", "c": "3"}, attrs)
	assert.Nil(t, headersToAttributes(nil))
}
