package services

import (
	"context"
	"time"

	"github.com/careerlens/apiserver/internal/mq"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// EventPublisher receives application lifecycle events. Implementations
// must not fail the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event types.Event)
}

// Notifier pushes a payload to a connected user.
type Notifier interface {
	Notify(userID uuid.UUID, payload any)
}

// Dispatcher fans events out to the message bus and to live connections.
// Either side may be nil.
type Dispatcher struct {
	bus      *mq.MQ
	notifier Notifier
	logger   logrus.FieldLogger
}

func NewDispatcher(bus *mq.MQ, notifier Notifier, logger logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{bus: bus, notifier: notifier, logger: logger}
}

// Publish delivers the event. Failures are logged and swallowed.
func (d *Dispatcher) Publish(ctx context.Context, event types.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if d.notifier != nil {
		for _, userID := range event.Recipients() {
			if userID != uuid.Nil {
				d.notifier.Notify(userID, event)
			}
		}
	}

	if d.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	attrs := map[string]string{"event_type": string(event.Type)}
	if _, err := d.bus.PublishJSON(ctx, mq.ChannelApplicationEvents, event, attrs); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"event_type":     event.Type,
			"application_id": event.ApplicationID,
		}).Warn("publish application event failed")
	}
}

// RequestMatch queues a scoring request for the worker.
func (d *Dispatcher) RequestMatch(ctx context.Context, req types.MatchRequest) error {
	if d.bus == nil {
		return ErrUnavailable
	}
	_, err := d.bus.PublishJSON(ctx, mq.ChannelMatchRequested, req, nil)
	return err
}

// HasBus reports whether a message bus is attached.
func (d *Dispatcher) HasBus() bool {
	return d.bus != nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, types.Event) {}
