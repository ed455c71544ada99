package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapWriteError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "applications_user_job_key"})
	assert.ErrorIs(t, mapWriteError(dup), ErrConflict)

	fk := &pq.Error{Code: "23503"}
	assert.Same(t, fk, errors.Unwrap(fmt.Errorf("x: %w", mapWriteError(fk))))
}

func TestCheckAffected(t *testing.T) {
	assert.ErrorIs(t, checkAffected(0, nil), ErrNotFound)
	assert.NoError(t, checkAffected(1, nil))

	boom := errors.New("boom")
	assert.ErrorIs(t, checkAffected(0, boom), boom)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$1", placeholder(1))
	assert.Equal(t, "$12", placeholder(12))
}
