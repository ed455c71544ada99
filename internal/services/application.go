package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
)

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	Exists(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	Create(ctx context.Context, app types.Application) (types.Application, error)
	Get(ctx context.Context, id uuid.UUID) (types.Application, error)
	GetForSeeker(ctx context.Context, id, userID uuid.UUID) (types.Application, error)
	ListBySeeker(ctx context.Context, userID uuid.UUID) ([]types.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]types.Application, error)
	Update(ctx context.Context, app types.Application) (types.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status types.ApplicationStatus) (types.Application, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// ApplicationService encapsulates the application lifecycle.
type ApplicationService struct {
	apps   ApplicationRepository
	jobs   *JobService
	events EventPublisher
	now    func() time.Time
}

// NewApplicationService builds the service. events may be nil.
func NewApplicationService(apps ApplicationRepository, jobs *JobService, events EventPublisher) *ApplicationService {
	if events == nil {
		events = noopPublisher{}
	}
	return &ApplicationService{apps: apps, jobs: jobs, events: events, now: time.Now}
}

// Apply submits the seeker's application to an open job. A second
// application for the same job yields store.ErrConflict.
func (s *ApplicationService) Apply(ctx context.Context, seeker types.User, jobID uuid.UUID, in types.ApplicationInput) (types.Application, error) {
	if err := CheckRole(seeker, types.RoleSeeker); err != nil {
		return types.Application{}, err
	}

	job, err := s.jobs.repo.Get(ctx, jobID)
	if err != nil {
		return types.Application{}, err
	}
	if !job.IsOpen(s.now()) {
		return types.Application{}, ErrClosed
	}

	exists, err := s.apps.Exists(ctx, seeker.ID, jobID)
	if err != nil {
		return types.Application{}, fmt.Errorf("check existing application: %w", err)
	}
	if exists {
		return types.Application{}, store.ErrConflict
	}

	app := types.Application{
		UserID: seeker.ID,
		JobID:  jobID,
		Status: types.StatusApplied,
	}
	in.Apply(&app)

	created, err := s.apps.Create(ctx, app)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.Application{}, err
		}
		return types.Application{}, fmt.Errorf("create application: %w", err)
	}

	s.events.Publish(ctx, types.Event{
		Type:          types.EventApplicationSubmitted,
		ApplicationID: created.ID,
		JobID:         job.ID,
		JobTitle:      job.Title,
		SeekerID:      seeker.ID,
		EmployerID:    job.AdminID,
		Status:        created.Status,
	})
	return created, nil
}

// ListMine returns the seeker's applications with job summaries.
func (s *ApplicationService) ListMine(ctx context.Context, seeker types.User) ([]types.Application, error) {
	if err := CheckRole(seeker, types.RoleSeeker); err != nil {
		return nil, err
	}
	return s.apps.ListBySeeker(ctx, seeker.ID)
}

// GetMine returns one of the seeker's applications. Applications of other
// seekers are reported as store.ErrNotFound.
func (s *ApplicationService) GetMine(ctx context.Context, seeker types.User, id uuid.UUID) (types.Application, error) {
	if err := CheckRole(seeker, types.RoleSeeker); err != nil {
		return types.Application{}, err
	}
	return s.apps.GetForSeeker(ctx, id, seeker.ID)
}

// UpdateMine edits the applicant-supplied fields. Status is left untouched.
func (s *ApplicationService) UpdateMine(ctx context.Context, seeker types.User, id uuid.UUID, in types.ApplicationInput) (types.Application, error) {
	if err := CheckRole(seeker, types.RoleSeeker); err != nil {
		return types.Application{}, err
	}
	app, err := s.apps.GetForSeeker(ctx, id, seeker.ID)
	if err != nil {
		return types.Application{}, err
	}
	in.Apply(&app)
	return s.apps.Update(ctx, app)
}

// Withdraw deletes one of the seeker's applications.
func (s *ApplicationService) Withdraw(ctx context.Context, seeker types.User, id uuid.UUID) error {
	if err := CheckRole(seeker, types.RoleSeeker); err != nil {
		return err
	}
	app, err := s.apps.GetForSeeker(ctx, id, seeker.ID)
	if err != nil {
		return err
	}
	if err := s.apps.Delete(ctx, id, seeker.ID); err != nil {
		return err
	}

	event := types.Event{
		Type:          types.EventApplicationWithdrawn,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		SeekerID:      seeker.ID,
		Status:        app.Status,
	}
	if job, err := s.jobs.repo.Get(ctx, app.JobID); err == nil {
		event.EmployerID = job.AdminID
		event.JobTitle = job.Title
	}
	s.events.Publish(ctx, event)
	return nil
}

// ListForJob returns the applicants of a job the employer owns.
func (s *ApplicationService) ListForJob(ctx context.Context, employer types.User, jobID uuid.UUID) ([]types.Application, error) {
	if err := CheckRole(employer, types.RoleEmployer); err != nil {
		return nil, err
	}
	if _, err := s.jobs.RequireOwnedJob(ctx, jobID, employer.ID); err != nil {
		return nil, err
	}
	return s.apps.ListByJob(ctx, jobID)
}

// UpdateStatus moves an application to shortlisted, selected, or rejected.
// The status is checked first, then existence (store.ErrNotFound), then
// ownership of the job (ErrForbidden).
func (s *ApplicationService) UpdateStatus(ctx context.Context, employer types.User, id uuid.UUID, rawStatus string) (types.Application, error) {
	if err := CheckRole(employer, types.RoleEmployer); err != nil {
		return types.Application{}, err
	}
	status, ok := types.ParseReviewStatus(rawStatus)
	if !ok {
		return types.Application{}, invalid("invalid status provided")
	}

	app, job, err := s.employerApplication(ctx, employer, id)
	if err != nil {
		return types.Application{}, err
	}

	updated, err := s.apps.UpdateStatus(ctx, app.ID, status)
	if err != nil {
		return types.Application{}, err
	}

	s.events.Publish(ctx, types.Event{
		Type:          types.EventStatusChanged,
		ApplicationID: updated.ID,
		JobID:         job.ID,
		JobTitle:      job.Title,
		SeekerID:      updated.UserID,
		EmployerID:    employer.ID,
		Status:        updated.Status,
	})
	return updated, nil
}

// Authorize loads an application for a caller allowed to see it: the seeker
// who submitted it or the employer who owns its job. Seekers get
// store.ErrNotFound for foreign applications; employers get ErrForbidden.
func (s *ApplicationService) Authorize(ctx context.Context, actor types.User, id uuid.UUID) (types.Application, types.Job, error) {
	switch actor.Role {
	case types.RoleSeeker:
		app, err := s.apps.GetForSeeker(ctx, id, actor.ID)
		if err != nil {
			return types.Application{}, types.Job{}, err
		}
		job, err := s.jobs.repo.Get(ctx, app.JobID)
		if err != nil {
			return types.Application{}, types.Job{}, err
		}
		return app, job, nil
	case types.RoleEmployer:
		return s.employerApplication(ctx, actor, id)
	default:
		return types.Application{}, types.Job{}, ErrForbidden
	}
}

func (s *ApplicationService) employerApplication(ctx context.Context, employer types.User, id uuid.UUID) (types.Application, types.Job, error) {
	app, err := s.apps.Get(ctx, id)
	if err != nil {
		return types.Application{}, types.Job{}, err
	}
	job, err := s.jobs.RequireOwnedJob(ctx, app.JobID, employer.ID)
	if err != nil {
		return types.Application{}, types.Job{}, err
	}
	return app, job, nil
}
