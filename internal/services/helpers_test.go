package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/careerlens/apiserver/internal/store/storetest"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []types.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event types.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []types.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.Event(nil), p.events...)
}

type fixture struct {
	db           *storetest.DB
	users        *UserService
	jobs         *JobService
	applications *ApplicationService
	events       *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storetest.New()
	db.SetNow(func() time.Time { return fixedNow })
	events := &recordingPublisher{}

	jobs := NewJobService(db.Jobs)
	jobs.now = func() time.Time { return fixedNow }
	applications := NewApplicationService(db.Applications, jobs, events)
	applications.now = func() time.Time { return fixedNow }

	return &fixture{
		db:           db,
		users:        NewUserService(db.Users, bcrypt.MinCost),
		jobs:         jobs,
		applications: applications,
		events:       events,
	}
}

func (f *fixture) signup(t *testing.T, name string, role types.Role) types.User {
	t.Helper()
	user, err := f.users.Signup(context.Background(), SignupInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) postJob(t *testing.T, employer types.User, deadline time.Time) types.Job {
	t.Helper()
	job, err := f.jobs.Create(context.Background(), employer, sampleJob(deadline))
	require.NoError(t, err)
	return job
}

func (f *fixture) apply(t *testing.T, seeker types.User, jobID uuid.UUID) types.Application {
	t.Helper()
	app, err := f.applications.Apply(context.Background(), seeker, jobID, sampleInput(seeker.Name))
	require.NoError(t, err)
	return app
}

func sampleJob(deadline time.Time) types.Job {
	return types.Job{
		Title:               "Backend Engineer",
		Location:            "Remote",
		Salary:              "100k-120k",
		JobType:             "Full-time",
		Description:         "Build APIs in Go",
		CompanyName:         "Acme",
		ExperienceRequired:  "3+ years",
		SkillsRequired:      []string{"Go", "PostgreSQL"},
		NumberOfOpenings:    2,
		ApplicationLastDate: deadline,
		Responsibilities:    "Ship features",
		Requirements:        "Go experience",
	}
}

func sampleInput(name string) types.ApplicationInput {
	return types.ApplicationInput{
		FullName:    name,
		Email:       name + "@example.com",
		PhoneNumber: "+1 555 0100",
		Skills:      "Go, SQL",
		Experience:  "4 years",
		ResumeURL:   "https://example.com/" + name + ".pdf",
	}
}

func newID() uuid.UUID {
	return uuid.New()
}
