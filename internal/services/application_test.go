package services

import (
	"context"
	"sync"
	"testing"

	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCreatesAppliedApplicationAndNotifiesEmployer(t *testing.T) {
	f := newFixture(t)
	employer := f.signup(t, "erin", types.RoleEmployer)
	seeker := f.signup(t, "sam", types.RoleSeeker)
	job := f.postJob(t, employer, fixedNow.AddDate(0, 1, 0))

	app := f.apply(t, seeker, job.ID)
	assert.Equal(t, types.StatusApplied, app.Status)
	assert.Equal(t, seeker.ID, app.UserID)
	assert.Equal(t, job.ID, app.JobID)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, types.EventApplicationSubmitted, events[0].Type)
	assert.Equal(t, employer.ID, events[0].EmployerID)
	assert.Equal(t, app.ID, events[0].ApplicationID)
}

func TestApplyRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.signup(t, "erin", types.RoleEmployer)
	seeker := f.signup(t, "sam", types.RoleSeeker)
	open := f.postJob(t, employer, fixedNow.AddDate(0, 1, 0))
	expired := f.postJob(t, employer, fixedNow.AddDate(0, 0, -2))

	_, err := f.applications.Apply(ctx, employer, open.ID, sampleInput("erin"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.applications.Apply(ctx, seeker, newID(), sampleInput("sam"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.applications.Apply(ctx, seeker, expired.ID, sampleInput("sam"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDuplicateApplicationRejected(t *testing.T) {
	f := newFixture(t)
	employer := f.signup(t, "erin", types.RoleEmployer)
	seeker := f.signup(t, "sam", types.RoleSeeker)
	job := f.postJob(t, employer, fixedNow.AddDate(0, 1, 0))

	f.apply(t, seeker, job.ID)
	_, err := f.applications.Apply(context.Background(), seeker, job.ID, sampleInput("sam"))
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, 1, f.db.ApplicationCount(seeker.ID, job.ID))
}

func TestConcurrentDuplicateApplicationsLeaveOneRow(t *testing.T) {
	f := newFixture(t)
	employer := f.signup(t, "erin", types.RoleEmployer)
	seeker := f.signup(t, "sam", types.RoleSeeker)
	job := f.postJob(t, employer, fixedNow.AddDate(0, 1, 0))

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.applications.Apply(context.Background(), seeker, job.ID, sampleInput("sam"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, store.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.db.ApplicationCount(seeker.ID, job.ID))
}

func TestSeekerOwnedApplicationsAreScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.signup(t, "erin", types.RoleEmployer)
	sam := f.signup(t, "sam", types.RoleSeeker)
	tess := f.signup(t, "tess", types.RoleSeeker)
	job := f.postJob(t, employer, fixedNow.AddDate(0, 1, 0))
	app := f.apply(t, sam, job.ID)

	_, err := f.applications.GetMine(ctx, tess, app.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.applications.UpdateMine(ctx, tess, app.ID, sampleInput("tess"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = f.applications.Withdraw(ctx, tess, app.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := f.applications.GetMine(ctx, sam, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.JobSummary)
	assert.Equal(t, "Backend Engineer", got.Title)
	assert.Equal(t, "sam", got.FullName)
}

func TestUpdateMineKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.signup(t, "erin", types.RoleEmployer)
	seeker := f.signup(t, "sam", types.RoleSeeker)
	job := f.postJob(t, employer, fixedNow.AddDate(0, 1, 0))
	app := f.apply(t, seeker, job.ID)

	_, err := f.applications.UpdateStatus(ctx, employer, app.ID, "shortlisted")
	require.NoError(t, err)

	in := sampleInput("sam")
	in.Experience = "5 years"
	updated, err := f.applications.UpdateMine(ctx, seeker, app.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "5 years", updated.Experience)
	assert.Equal(t, types.StatusShortlisted, updated.Status)
}

func TestWithdrawRemovesApplicationAndNotifiesEmployer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.signup(t, "erin", types.RoleEmployer)
	seeker := f.signup(t, "sam", types.RoleSeeker)
	job := f.postJob(t, employer, fixedNow.AddDate(0, 1, 0))
	app := f.apply(t, seeker, job.ID)

	require.NoError(t, f.applications.Withdraw(ctx, seeker, app.ID))

	mine, err := f.applications.ListMine(ctx, seeker)
	require.NoError(t, err)
	assert.Empty(t, mine)

	events := f.events.Events()
	require.Len(t, events, 2)
	assert.Equal(t, types.EventApplicationWithdrawn, events[1].Type)
	assert.Equal(t, employer.ID, events[1].EmployerID)
}

func TestListForJobRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner", types.RoleEmployer)
	other := f.signup(t, "other", types.RoleEmployer)
	seeker := f.signup(t, "sam", types.RoleSeeker)
	job := f.postJob(t, owner, fixedNow.AddDate(0, 1, 0))
	f.apply(t, seeker, job.ID)

	_, err := f.applications.ListForJob(ctx, other, job.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.applications.ListForJob(ctx, owner, newID())
	assert.ErrorIs(t, err, ErrForbidden)

	apps, err := f.applications.ListForJob(ctx, owner, job.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.NotNil(t, apps[0].ApplicantSummary)
	assert.Equal(t, "sam", apps[0].ApplicantName)
	assert.Equal(t, "sam@example.com", apps[0].ApplicantEmail)
}

func TestUpdateStatusRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner", types.RoleEmployer)
	other := f.signup(t, "other", types.RoleEmployer)
	seeker := f.signup(t, "sam", types.RoleSeeker)
	job := f.postJob(t, owner, fixedNow.AddDate(0, 1, 0))
	app := f.apply(t, seeker, job.ID)

	_, err := f.applications.UpdateStatus(ctx, seeker, app.ID, "selected")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.applications.UpdateStatus(ctx, owner, app.ID, "hired")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.applications.UpdateStatus(ctx, owner, app.ID, "applied")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.applications.UpdateStatus(ctx, owner, newID(), "selected")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.applications.UpdateStatus(ctx, other, app.ID, "selected")
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := f.db.Applications.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, stored.Status)

	for _, raw := range []string{"Shortlisted", "SELECTED", "rejected", "shortlisted"} {
		updated, err := f.applications.UpdateStatus(ctx, owner, app.ID, raw)
		require.NoError(t, err, raw)
		want, _ := types.ParseReviewStatus(raw)
		assert.Equal(t, want, updated.Status)
	}

	last := f.events.Events()[len(f.events.Events())-1]
	assert.Equal(t, types.EventStatusChanged, last.Type)
	assert.Equal(t, seeker.ID, last.SeekerID)
	assert.Equal(t, types.StatusShortlisted, last.Status)
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner", types.RoleEmployer)
	other := f.signup(t, "other", types.RoleEmployer)
	sam := f.signup(t, "sam", types.RoleSeeker)
	tess := f.signup(t, "tess", types.RoleSeeker)
	job := f.postJob(t, owner, fixedNow.AddDate(0, 1, 0))
	app := f.apply(t, sam, job.ID)

	_, _, err := f.applications.Authorize(ctx, sam, app.ID)
	assert.NoError(t, err)
	_, _, err = f.applications.Authorize(ctx, owner, app.ID)
	assert.NoError(t, err)

	_, _, err = f.applications.Authorize(ctx, tess, app.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, _, err = f.applications.Authorize(ctx, other, app.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
