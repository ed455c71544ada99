package mq

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
)

const memoryBuffer = 256

// MemoryBackend delivers messages between goroutines of one process.
// Each channel is a single queue: concurrent subscribers compete for messages.
type MemoryBackend struct {
	mu     sync.Mutex
	queues map[string]chan Message
	seq    atomic.Uint64
	closed chan struct{}
	once   sync.Once
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		queues: make(map[string]chan Message),
		closed: make(chan struct{}),
	}
}

func (m *MemoryBackend) queue(channel string) chan Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[channel]
	if !ok {
		q = make(chan Message, memoryBuffer)
		m.queues[channel] = q
	}
	return q
}

var errMemoryClosed = errors.New("memory backend closed")

func (m *MemoryBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if channel == "" {
		return "", errors.New("memory channel is required")
	}
	msg := Message{
		ID:         strconv.FormatUint(m.seq.Add(1), 10),
		Data:       append([]byte(nil), data...),
		Attributes: attrs,
	}
	select {
	case <-m.closed:
		return "", errMemoryClosed
	default:
	}
	select {
	case <-m.closed:
		return "", errMemoryClosed
	case <-ctx.Done():
		return "", ctx.Err()
	case m.queue(channel) <- msg:
		return msg.ID, nil
	}
}

// Subscribe blocks until ctx is done or the backend is closed. A failed
// message is redelivered once and then dropped.
func (m *MemoryBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if channel == "" {
		return errors.New("memory channel is required")
	}
	q := m.queue(channel)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.closed:
			return nil
		case msg := <-q:
			if err := handler(ctx, msg); err != nil {
				_ = handler(ctx, msg)
			}
		}
	}
}

func (m *MemoryBackend) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}
