// Package storetest provides in-memory repositories with the same contracts
// as the Postgres repositories in package store.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
)

// DB holds the shared state behind the repositories.
type DB struct {
	mu      sync.RWMutex
	now     func() time.Time
	users   map[uuid.UUID]types.User
	jobs    map[uuid.UUID]types.Job
	apps    map[uuid.UUID]types.Application
	matches []types.MatchResult

	Users        *UserRepository
	Jobs         *JobRepository
	Applications *ApplicationRepository
	Matches      *MatchRepository
}

func New() *DB {
	db := &DB{
		now:   func() time.Time { return time.Now().UTC() },
		users: map[uuid.UUID]types.User{},
		jobs:  map[uuid.UUID]types.Job{},
		apps:  map[uuid.UUID]types.Application{},
	}
	db.Users = &UserRepository{db: db}
	db.Jobs = &JobRepository{db: db}
	db.Applications = &ApplicationRepository{db: db}
	db.Matches = &MatchRepository{db: db}
	return db
}

// SetNow overrides the clock used for timestamps and deadline filtering.
func (db *DB) SetNow(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// ApplicationCount returns the number of stored applications for the pair.
func (db *DB) ApplicationCount(userID, jobID uuid.UUID) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	n := 0
	for _, app := range db.apps {
		if app.UserID == userID && app.JobID == jobID {
			n++
		}
	}
	return n
}

type UserRepository struct{ db *DB }

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (types.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	user, ok := r.db.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range r.db.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, existing := range r.db.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.db.now()
	r.db.users[user.ID] = user
	return user, nil
}

type JobRepository struct{ db *DB }

func (r *JobRepository) withAdmin(job types.Job) types.Job {
	job.AdminName = r.db.users[job.AdminID].Name
	job.SkillsRequired = append([]string{}, job.SkillsRequired...)
	return job
}

func (r *JobRepository) List(_ context.Context, filter types.JobFilter) ([]types.Job, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	now := r.db.now()
	var matched []types.Job
	for _, job := range r.db.jobs {
		if !job.IsOpen(now) {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" &&
			!strings.Contains(strings.ToLower(job.Title), q) &&
			!strings.Contains(strings.ToLower(job.CompanyName), q) &&
			!strings.Contains(strings.ToLower(job.Description), q) {
			continue
		}
		if loc := strings.ToLower(strings.TrimSpace(filter.Location)); loc != "" &&
			!strings.Contains(strings.ToLower(job.Location), loc) {
			continue
		}
		if jt := strings.TrimSpace(filter.JobType); jt != "" && !strings.EqualFold(job.JobType, jt) {
			continue
		}
		matched = append(matched, r.withAdmin(job))
	}
	sortJobs(matched)

	total := len(matched)
	if filter.Offset >= total {
		return []types.Job{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (r *JobRepository) ListByEmployer(_ context.Context, employerID uuid.UUID) ([]types.Job, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	jobs := []types.Job{}
	for _, job := range r.db.jobs {
		if job.AdminID == employerID {
			jobs = append(jobs, r.withAdmin(job))
		}
	}
	sortJobs(jobs)
	return jobs, nil
}

func (r *JobRepository) Get(_ context.Context, id uuid.UUID) (types.Job, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	job, ok := r.db.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return r.withAdmin(job), nil
}

func (r *JobRepository) GetOwned(ctx context.Context, id, employerID uuid.UUID) (types.Job, error) {
	job, err := r.Get(ctx, id)
	if err != nil {
		return types.Job{}, err
	}
	if job.AdminID != employerID {
		return types.Job{}, store.ErrNotFound
	}
	return job, nil
}

func (r *JobRepository) Create(_ context.Context, job types.Job) (types.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := r.db.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	job.AdminName = ""
	r.db.jobs[job.ID] = job
	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, job types.Job) (types.Job, error) {
	r.db.mu.Lock()
	existing, ok := r.db.jobs[job.ID]
	if !ok || existing.AdminID != job.AdminID {
		r.db.mu.Unlock()
		return types.Job{}, store.ErrNotFound
	}
	job.CreatedAt = existing.CreatedAt
	job.UpdatedAt = r.db.now()
	job.AdminName = ""
	r.db.jobs[job.ID] = job
	r.db.mu.Unlock()
	return r.Get(ctx, job.ID)
}

func (r *JobRepository) Delete(_ context.Context, id, employerID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	job, ok := r.db.jobs[id]
	if !ok || job.AdminID != employerID {
		return store.ErrNotFound
	}
	delete(r.db.jobs, id)
	for appID, app := range r.db.apps {
		if app.JobID == id {
			r.db.deleteApplication(appID)
		}
	}
	return nil
}

func sortJobs(jobs []types.Job) {
	sort.Slice(jobs, func(i, k int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
		}
		return jobs[i].ID.String() < jobs[k].ID.String()
	})
}

type ApplicationRepository struct{ db *DB }

func (r *ApplicationRepository) Exists(_ context.Context, userID, jobID uuid.UUID) (bool, error) {
	return r.db.ApplicationCount(userID, jobID) > 0, nil
}

func (r *ApplicationRepository) Create(_ context.Context, app types.Application) (types.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.apps {
		if existing.UserID == app.UserID && existing.JobID == app.JobID {
			return types.Application{}, store.ErrConflict
		}
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := r.db.now()
	app.AppliedAt = now
	app.UpdatedAt = now
	app.JobSummary = nil
	app.ApplicantSummary = nil
	r.db.apps[app.ID] = app
	return app, nil
}

func (r *ApplicationRepository) Get(_ context.Context, id uuid.UUID) (types.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	app, ok := r.db.apps[id]
	if !ok {
		return types.Application{}, store.ErrNotFound
	}
	return app, nil
}

func (r *ApplicationRepository) GetForSeeker(_ context.Context, id, userID uuid.UUID) (types.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	app, ok := r.db.apps[id]
	if !ok || app.UserID != userID {
		return types.Application{}, store.ErrNotFound
	}
	return r.withJob(app), nil
}

func (r *ApplicationRepository) withJob(app types.Application) types.Application {
	job := r.db.jobs[app.JobID]
	app.JobSummary = &types.JobSummary{
		Title:       job.Title,
		Location:    job.Location,
		Salary:      job.Salary,
		JobType:     job.JobType,
		CompanyName: job.CompanyName,
	}
	return app
}

func (r *ApplicationRepository) ListBySeeker(_ context.Context, userID uuid.UUID) ([]types.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	apps := []types.Application{}
	for _, app := range r.db.apps {
		if app.UserID == userID {
			apps = append(apps, r.withJob(app))
		}
	}
	sortApplications(apps)
	return apps, nil
}

func (r *ApplicationRepository) ListByJob(_ context.Context, jobID uuid.UUID) ([]types.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	apps := []types.Application{}
	for _, app := range r.db.apps {
		if app.JobID == jobID {
			user := r.db.users[app.UserID]
			app.ApplicantSummary = &types.ApplicantSummary{ApplicantName: user.Name, ApplicantEmail: user.Email}
			apps = append(apps, app)
		}
	}
	sortApplications(apps)
	return apps, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app types.Application) (types.Application, error) {
	r.db.mu.Lock()
	existing, ok := r.db.apps[app.ID]
	if !ok || existing.UserID != app.UserID {
		r.db.mu.Unlock()
		return types.Application{}, store.ErrNotFound
	}
	existing.FullName = app.FullName
	existing.Email = app.Email
	existing.PhoneNumber = app.PhoneNumber
	existing.Skills = app.Skills
	existing.Experience = app.Experience
	existing.ResumeURL = app.ResumeURL
	existing.GithubURL = app.GithubURL
	existing.LinkedinURL = app.LinkedinURL
	existing.UpdatedAt = r.db.now()
	r.db.apps[app.ID] = existing
	r.db.mu.Unlock()
	return r.GetForSeeker(ctx, app.ID, app.UserID)
}

func (r *ApplicationRepository) UpdateStatus(_ context.Context, id uuid.UUID, status types.ApplicationStatus) (types.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	app, ok := r.db.apps[id]
	if !ok {
		return types.Application{}, store.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = r.db.now()
	r.db.apps[id] = app
	return app, nil
}

func (r *ApplicationRepository) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	app, ok := r.db.apps[id]
	if !ok || app.UserID != userID {
		return store.ErrNotFound
	}
	r.db.deleteApplication(id)
	return nil
}

// deleteApplication must be called with mu held.
func (db *DB) deleteApplication(id uuid.UUID) {
	delete(db.apps, id)
	kept := db.matches[:0]
	for _, m := range db.matches {
		if m.ApplicationID != id {
			kept = append(kept, m)
		}
	}
	db.matches = kept
}

func sortApplications(apps []types.Application) {
	sort.Slice(apps, func(i, k int) bool {
		if !apps[i].AppliedAt.Equal(apps[k].AppliedAt) {
			return apps[i].AppliedAt.After(apps[k].AppliedAt)
		}
		return apps[i].ID.String() < apps[k].ID.String()
	})
}

type MatchRepository struct{ db *DB }

func (r *MatchRepository) Create(_ context.Context, result types.MatchResult) (types.MatchResult, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	result.CreatedAt = r.db.now()
	r.db.matches = append(r.db.matches, result)
	return result, nil
}

func (r *MatchRepository) Latest(_ context.Context, applicationID uuid.UUID) (types.MatchResult, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for i := len(r.db.matches) - 1; i >= 0; i-- {
		if r.db.matches[i].ApplicationID == applicationID {
			return r.db.matches[i], nil
		}
	}
	return types.MatchResult{}, store.ErrNotFound
}
