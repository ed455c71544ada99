package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
)

// ApplicationRepository handles persistence for applications.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `
	a.id, a.user_id, a.job_id, a.status, a.full_name, a.email, a.phone_number,
	a.skills, a.experience, a.resume_url, a.github_url, a.linkedin_url,
	a.applied_at, a.updated_at`

func applicationDest(app *types.Application) []any {
	return []any{
		&app.ID,
		&app.UserID,
		&app.JobID,
		&app.Status,
		&app.FullName,
		&app.Email,
		&app.PhoneNumber,
		&app.Skills,
		&app.Experience,
		&app.ResumeURL,
		&app.GithubURL,
		&app.LinkedinURL,
		&app.AppliedAt,
		&app.UpdatedAt,
	}
}

// Exists reports whether the seeker already applied to the job.
func (r *ApplicationRepository) Exists(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE user_id = $1 AND job_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, jobID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts the application. A second row for the same seeker and job
// yields ErrConflict.
func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := time.Now().UTC()
	app.AppliedAt = now
	app.UpdatedAt = now

	const query = `
		INSERT INTO applications (
			id, user_id, job_id, status, full_name, email, phone_number,
			skills, experience, resume_url, github_url, linkedin_url,
			applied_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		app.ID,
		app.UserID,
		app.JobID,
		app.Status,
		app.FullName,
		app.Email,
		app.PhoneNumber,
		app.Skills,
		app.Experience,
		app.ResumeURL,
		app.GithubURL,
		app.LinkedinURL,
		app.AppliedAt,
		app.UpdatedAt,
	); err != nil {
		return types.Application{}, mapWriteError(err)
	}
	return app, nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id uuid.UUID) (types.Application, error) {
	const query = `SELECT` + applicationColumns + `
		FROM applications a
		WHERE a.id = $1`
	var app types.Application
	if err := r.db.QueryRowContext(ctx, query, id).Scan(applicationDest(&app)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

// GetForSeeker returns the application with its job summary, only when it
// belongs to userID.
func (r *ApplicationRepository) GetForSeeker(ctx context.Context, id, userID uuid.UUID) (types.Application, error) {
	const query = `SELECT` + applicationColumns + `,
		j.title, j.location, j.salary, j.job_type, j.company_name
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.id = $1 AND a.user_id = $2`
	app, err := scanWithJob(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

// ListBySeeker returns the seeker's applications with job summaries, newest first.
func (r *ApplicationRepository) ListBySeeker(ctx context.Context, userID uuid.UUID) ([]types.Application, error) {
	const query = `SELECT` + applicationColumns + `,
		j.title, j.location, j.salary, j.job_type, j.company_name
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.user_id = $1
		ORDER BY a.applied_at DESC, a.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []types.Application{}
	for rows.Next() {
		app, err := scanWithJob(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// ListByJob returns the job's applications with applicant summaries, newest first.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]types.Application, error) {
	const query = `SELECT` + applicationColumns + `,
		u.name, u.email
		FROM applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.job_id = $1
		ORDER BY a.applied_at DESC, a.id`
	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []types.Application{}
	for rows.Next() {
		var app types.Application
		applicant := &types.ApplicantSummary{}
		dest := append(applicationDest(&app), &applicant.ApplicantName, &applicant.ApplicantEmail)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		app.ApplicantSummary = applicant
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanWithJob(row rowScanner) (types.Application, error) {
	var app types.Application
	job := &types.JobSummary{}
	dest := append(applicationDest(&app), &job.Title, &job.Location, &job.Salary, &job.JobType, &job.CompanyName)
	if err := row.Scan(dest...); err != nil {
		return types.Application{}, err
	}
	app.JobSummary = job
	return app, nil
}

// Update rewrites the applicant-supplied fields of the seeker's own application.
func (r *ApplicationRepository) Update(ctx context.Context, app types.Application) (types.Application, error) {
	app.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE applications
		SET full_name = $1,
			email = $2,
			phone_number = $3,
			skills = $4,
			experience = $5,
			resume_url = $6,
			github_url = $7,
			linkedin_url = $8,
			updated_at = $9
		WHERE id = $10 AND user_id = $11`
	result, err := r.db.ExecContext(
		ctx,
		query,
		app.FullName,
		app.Email,
		app.PhoneNumber,
		app.Skills,
		app.Experience,
		app.ResumeURL,
		app.GithubURL,
		app.LinkedinURL,
		app.UpdatedAt,
		app.ID,
		app.UserID,
	)
	if err != nil {
		return types.Application{}, err
	}
	if err := checkAffected(result.RowsAffected()); err != nil {
		return types.Application{}, err
	}
	return r.GetForSeeker(ctx, app.ID, app.UserID)
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status types.ApplicationStatus) (types.Application, error) {
	const query = `
		UPDATE applications
		SET status = $1, updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return types.Application{}, err
	}
	if err := checkAffected(result.RowsAffected()); err != nil {
		return types.Application{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes the seeker's own application.
func (r *ApplicationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	const query = `DELETE FROM applications WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(result.RowsAffected())
}
