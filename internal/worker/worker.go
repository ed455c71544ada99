// Package worker consumes the event bus: it scores queued match requests
// and records application events.
package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/careerlens/apiserver/internal/mq"
	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Scorer computes and stores a match result for an application.
type Scorer interface {
	Score(ctx context.Context, applicationID uuid.UUID) (types.MatchResult, error)
}

// Worker subscribes to the match and event channels.
type Worker struct {
	bus    *mq.MQ
	scorer Scorer
	logger logrus.FieldLogger
}

func New(bus *mq.MQ, scorer Scorer, logger logrus.FieldLogger) *Worker {
	return &Worker{bus: bus, scorer: scorer, logger: logger}
}

// Run blocks until ctx is done or a subscription fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.bus.Subscribe(ctx, mq.ChannelMatchRequested, w.HandleMatchRequest)
	})
	g.Go(func() error {
		return w.bus.Subscribe(ctx, mq.ChannelApplicationEvents, w.HandleEvent)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleMatchRequest scores one application. Malformed requests and
// applications that no longer exist are dropped; other failures are
// returned so the broker can redeliver.
func (w *Worker) HandleMatchRequest(ctx context.Context, msg mq.Message) error {
	var req types.MatchRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.ApplicationID == uuid.Nil {
		w.logger.WithField("message_id", msg.ID).Warn("dropping malformed match request")
		return nil
	}

	log := w.logger.WithFields(logrus.Fields{
		"message_id":     msg.ID,
		"application_id": req.ApplicationID,
	})

	result, err := w.scorer.Score(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("application gone, dropping match request")
			return nil
		}
		log.WithError(err).Error("match scoring failed")
		return err
	}

	log.WithFields(logrus.Fields{
		"match_percentage": result.MatchPercentage,
		"fit_level":        result.FitLevel,
	}).Info("match scored")
	return nil
}

// HandleEvent records an application lifecycle event.
func (w *Worker) HandleEvent(_ context.Context, msg mq.Message) error {
	var event types.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		w.logger.WithField("message_id", msg.ID).Warn("dropping malformed application event")
		return nil
	}
	w.logger.WithFields(logrus.Fields{
		"event_type":     event.Type,
		"application_id": event.ApplicationID,
		"job_id":         event.JobID,
		"status":         event.Status,
	}).Info("application event")
	return nil
}
