package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"seeker":     RoleSeeker,
		"user":       RoleSeeker,
		" Employer ": RoleEmployer,
		"admin":      RoleEmployer,
	}
	for in, want := range cases {
		got, ok := ParseRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseRole("superuser")
	assert.False(t, ok)
}

func TestParseReviewStatus(t *testing.T) {
	got, ok := ParseReviewStatus("Shortlisted")
	require.True(t, ok)
	assert.Equal(t, StatusShortlisted, got)

	got, ok = ParseReviewStatus("REJECTED")
	require.True(t, ok)
	assert.Equal(t, StatusRejected, got)

	for _, bad := range []string{"applied", "hired", ""} {
		_, ok := ParseReviewStatus(bad)
		assert.False(t, ok, bad)
	}
}

func TestJobIsOpenThroughDeadlineDay(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	job := Job{ApplicationLastDate: deadline}

	assert.True(t, job.IsOpen(deadline.Add(-48*time.Hour)))
	assert.True(t, job.IsOpen(deadline.Add(23*time.Hour)))
	assert.False(t, job.IsOpen(deadline.Add(24*time.Hour)))
}

func TestNormalizeFitLevel(t *testing.T) {
	assert.Equal(t, FitExcellent, NormalizeFitLevel("Excellent Fit", 10))
	assert.Equal(t, FitGood, NormalizeFitLevel("good", 10))
	assert.Equal(t, FitNone, NormalizeFitLevel("Not a fit", 90))
	assert.Equal(t, FitNone, NormalizeFitLevel("Not an excellent fit", 90))
	assert.Equal(t, FitNone, NormalizeFitLevel("not a strong match", 90))
	assert.Equal(t, FitPartial, NormalizeFitLevel("Moderate match", 90))
	assert.Equal(t, FitGood, NormalizeFitLevel("", 65))
	assert.Equal(t, FitNone, NormalizeFitLevel("???", 5))
}

func TestApplicationJSONFlattensJoinedSummaries(t *testing.T) {
	app := Application{
		ID:         uuid.New(),
		Status:     StatusApplied,
		JobSummary: &JobSummary{Title: "Backend Engineer", CompanyName: "Acme"},
	}

	raw, err := json.Marshal(app)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Backend Engineer", decoded["title"])
	assert.Equal(t, "Acme", decoded["company_name"])
	assert.NotContains(t, decoded, "applicant_name")
}

func TestEventRecipients(t *testing.T) {
	seeker, employer := uuid.New(), uuid.New()
	base := Event{SeekerID: seeker, EmployerID: employer}

	base.Type = EventApplicationSubmitted
	assert.Equal(t, []uuid.UUID{employer}, base.Recipients())

	base.Type = EventStatusChanged
	assert.Equal(t, []uuid.UUID{seeker}, base.Recipients())

	base.Type = EventApplicationWithdrawn
	assert.Equal(t, []uuid.UUID{employer}, base.Recipients())
}
