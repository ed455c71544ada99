package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MatchRepository handles persistence for fit-scoring results.
type MatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, result types.MatchResult) (types.MatchResult, error) {
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	result.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO match_results (
			id, application_id, match_percentage, matched_skills, missing_skills,
			fit_level, summary, model, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		result.ID,
		result.ApplicationID,
		result.MatchPercentage,
		pq.StringArray(result.MatchedSkills),
		pq.StringArray(result.MissingSkills),
		result.FitLevel,
		result.Summary,
		result.Model,
		result.CreatedAt,
	); err != nil {
		return types.MatchResult{}, err
	}
	return result, nil
}

// Latest returns the most recent result for the application.
func (r *MatchRepository) Latest(ctx context.Context, applicationID uuid.UUID) (types.MatchResult, error) {
	const query = `
		SELECT id, application_id, match_percentage, matched_skills, missing_skills,
			fit_level, summary, model, created_at
		FROM match_results
		WHERE application_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	var result types.MatchResult
	var matched, missing pq.StringArray
	err := r.db.QueryRowContext(ctx, query, applicationID).Scan(
		&result.ID,
		&result.ApplicationID,
		&result.MatchPercentage,
		&matched,
		&missing,
		&result.FitLevel,
		&result.Summary,
		&result.Model,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MatchResult{}, ErrNotFound
		}
		return types.MatchResult{}, err
	}
	result.MatchedSkills = []string(matched)
	result.MissingSkills = []string(missing)
	return result, nil
}
