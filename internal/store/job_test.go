package store

import (
	"testing"
	"time"

	"github.com/careerlens/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenJobsWhereUsesUTCCutoff(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 03:00 on the 11th in Kolkata is still the 10th in UTC.
	now := time.Date(2026, 3, 11, 3, 0, 0, 0, kolkata)

	clause, args := openJobsWhere(types.JobFilter{}, now)

	assert.Equal(t, " WHERE j.application_last_date >= $1", clause)
	require.Len(t, args, 1)
	cutoff, ok := args[0].(time.Time)
	require.True(t, ok)
	assert.True(t, cutoff.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)), "cutoff %v", cutoff)

	job := types.Job{ApplicationLastDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	assert.True(t, job.IsOpen(now))
	assert.False(t, job.ApplicationLastDate.Before(cutoff))
}

func TestOpenJobsWhereNumbersFilters(t *testing.T) {
	clause, args := openJobsWhere(types.JobFilter{Query: " go ", Location: "remote", JobType: "Full-time"}, time.Now())

	assert.Contains(t, clause, "j.title ILIKE $2")
	assert.Contains(t, clause, "j.location ILIKE $3")
	assert.Contains(t, clause, "LOWER(j.job_type) = LOWER($4)")
	assert.Equal(t, []any{args[0], "%go%", "%remote%", "Full-time"}, args)
}
