package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
)

// JobRepository defines persistence operations for jobs.
type JobRepository interface {
	List(ctx context.Context, filter types.JobFilter) ([]types.Job, int, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]types.Job, error)
	Get(ctx context.Context, id uuid.UUID) (types.Job, error)
	GetOwned(ctx context.Context, id, employerID uuid.UUID) (types.Job, error)
	Create(ctx context.Context, job types.Job) (types.Job, error)
	Update(ctx context.Context, job types.Job) (types.Job, error)
	Delete(ctx context.Context, id, employerID uuid.UUID) error
}

// JobService encapsulates job posting use-cases.
type JobService struct {
	repo JobRepository
	now  func() time.Time
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo, now: time.Now}
}

// List returns open jobs and the total number matching filter.
func (s *JobService) List(ctx context.Context, filter types.JobFilter) ([]types.Job, int, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a job. A job past its deadline is only visible to its owner;
// everyone else gets store.ErrNotFound. viewer may be nil.
func (s *JobService) Get(ctx context.Context, id uuid.UUID, viewer *types.User) (types.Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Job{}, err
	}
	if job.IsOpen(s.now()) {
		return job, nil
	}
	if viewer != nil && viewer.Role == types.RoleEmployer && job.OwnedBy(viewer.ID) {
		return job, nil
	}
	return types.Job{}, store.ErrNotFound
}

// ListByEmployer returns every job the employer owns, expired ones included.
func (s *JobService) ListByEmployer(ctx context.Context, employer types.User) ([]types.Job, error) {
	if err := CheckRole(employer, types.RoleEmployer); err != nil {
		return nil, err
	}
	return s.repo.ListByEmployer(ctx, employer.ID)
}

// Create posts a job owned by employer.
func (s *JobService) Create(ctx context.Context, employer types.User, job types.Job) (types.Job, error) {
	if err := CheckRole(employer, types.RoleEmployer); err != nil {
		return types.Job{}, err
	}
	if err := normalizeJob(&job); err != nil {
		return types.Job{}, err
	}
	job.ID = uuid.Nil
	job.AdminID = employer.ID

	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return types.Job{}, fmt.Errorf("create job: %w", err)
	}
	created.AdminName = employer.Name
	return created, nil
}

// Update replaces the editable fields of a job the employer owns.
func (s *JobService) Update(ctx context.Context, employer types.User, job types.Job) (types.Job, error) {
	if err := CheckRole(employer, types.RoleEmployer); err != nil {
		return types.Job{}, err
	}
	if _, err := s.RequireOwnedJob(ctx, job.ID, employer.ID); err != nil {
		return types.Job{}, err
	}
	if err := normalizeJob(&job); err != nil {
		return types.Job{}, err
	}
	job.AdminID = employer.ID

	updated, err := s.repo.Update(ctx, job)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Job{}, ErrForbidden
		}
		return types.Job{}, fmt.Errorf("update job: %w", err)
	}
	return updated, nil
}

// Delete removes a job the employer owns along with its applications.
func (s *JobService) Delete(ctx context.Context, employer types.User, id uuid.UUID) error {
	if err := CheckRole(employer, types.RoleEmployer); err != nil {
		return err
	}
	if _, err := s.RequireOwnedJob(ctx, id, employer.ID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, employer.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// RequireOwnedJob returns the job when employerID owns it. A missing job and
// a job owned by someone else both yield ErrForbidden.
func (s *JobService) RequireOwnedJob(ctx context.Context, jobID, employerID uuid.UUID) (types.Job, error) {
	job, err := s.repo.GetOwned(ctx, jobID, employerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Job{}, ErrForbidden
		}
		return types.Job{}, fmt.Errorf("load job: %w", err)
	}
	return job, nil
}

func normalizeJob(job *types.Job) error {
	if job.NumberOfOpenings < 1 {
		return invalid("number_of_openings must be at least 1")
	}
	seen := make(map[string]struct{}, len(job.SkillsRequired))
	skills := make([]string, 0, len(job.SkillsRequired))
	for _, skill := range job.SkillsRequired {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, skill)
	}
	if len(skills) == 0 {
		return invalid("skills_required must list at least one skill")
	}
	job.SkillsRequired = skills
	return nil
}
