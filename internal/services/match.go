package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
)

// FitScorer rates how well an application fits its job.
type FitScorer interface {
	Score(ctx context.Context, job types.Job, app types.Application) (types.MatchResult, error)
}

// MatchRepository defines persistence operations for scoring results.
type MatchRepository interface {
	Create(ctx context.Context, result types.MatchResult) (types.MatchResult, error)
	Latest(ctx context.Context, applicationID uuid.UUID) (types.MatchResult, error)
}

// MatchQueue hands scoring off to a worker.
type MatchQueue interface {
	RequestMatch(ctx context.Context, req types.MatchRequest) error
}

// MatchService runs fit scoring inline or through a queue.
type MatchService struct {
	applications *ApplicationService
	results      MatchRepository
	scorer       FitScorer
	queue        MatchQueue
	events       EventPublisher
}

// NewMatchService builds the service. scorer and queue may be nil; with
// neither, every operation returns ErrUnavailable.
func NewMatchService(applications *ApplicationService, results MatchRepository, scorer FitScorer, queue MatchQueue, events EventPublisher) *MatchService {
	if events == nil {
		events = noopPublisher{}
	}
	return &MatchService{
		applications: applications,
		results:      results,
		scorer:       scorer,
		queue:        queue,
		events:       events,
	}
}

// Available reports whether scoring can be requested.
func (s *MatchService) Available() bool {
	return s.scorer != nil || s.queue != nil
}

// Request scores an application on behalf of the employer who owns its job.
// With a queue the request is handed off and queued is true; otherwise the
// result is computed and returned.
func (s *MatchService) Request(ctx context.Context, employer types.User, applicationID uuid.UUID) (result types.MatchResult, queued bool, err error) {
	if !s.Available() {
		return types.MatchResult{}, false, ErrUnavailable
	}
	if err := CheckRole(employer, types.RoleEmployer); err != nil {
		return types.MatchResult{}, false, err
	}
	app, job, err := s.applications.employerApplication(ctx, employer, applicationID)
	if err != nil {
		return types.MatchResult{}, false, err
	}

	if s.queue != nil {
		req := types.MatchRequest{ApplicationID: app.ID, RequestedBy: employer.ID}
		if err := s.queue.RequestMatch(ctx, req); err != nil {
			return types.MatchResult{}, false, fmt.Errorf("queue match request: %w", err)
		}
		return types.MatchResult{}, true, nil
	}

	result, err = s.score(ctx, job, app)
	return result, false, err
}

// Score computes and stores a result for the application. Used by the worker.
func (s *MatchService) Score(ctx context.Context, applicationID uuid.UUID) (types.MatchResult, error) {
	if s.scorer == nil {
		return types.MatchResult{}, ErrUnavailable
	}
	app, err := s.applications.apps.Get(ctx, applicationID)
	if err != nil {
		return types.MatchResult{}, err
	}
	job, err := s.applications.jobs.repo.Get(ctx, app.JobID)
	if err != nil {
		return types.MatchResult{}, err
	}
	return s.score(ctx, job, app)
}

func (s *MatchService) score(ctx context.Context, job types.Job, app types.Application) (types.MatchResult, error) {
	if s.scorer == nil {
		return types.MatchResult{}, ErrUnavailable
	}
	result, err := s.scorer.Score(ctx, job, app)
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("score application: %w", err)
	}
	result.ApplicationID = app.ID

	stored, err := s.results.Create(ctx, result)
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("store match result: %w", err)
	}

	s.events.Publish(ctx, types.Event{
		Type:          types.EventMatchCompleted,
		ApplicationID: app.ID,
		JobID:         job.ID,
		JobTitle:      job.Title,
		SeekerID:      app.UserID,
		EmployerID:    job.AdminID,
		Status:        app.Status,
	})
	return stored, nil
}

// Latest returns the newest result to the seeker who applied or the
// employer who owns the job. No result yet yields store.ErrNotFound.
func (s *MatchService) Latest(ctx context.Context, actor types.User, applicationID uuid.UUID) (types.MatchResult, error) {
	if !s.Available() {
		return types.MatchResult{}, ErrUnavailable
	}
	app, _, err := s.applications.Authorize(ctx, actor, applicationID)
	if err != nil {
		return types.MatchResult{}, err
	}
	result, err := s.results.Latest(ctx, app.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.MatchResult{}, err
		}
		return types.MatchResult{}, fmt.Errorf("load match result: %w", err)
	}
	return result, nil
}
