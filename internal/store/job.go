package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// JobRepository handles persistence for job postings.
type JobRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db, now: time.Now}
}

const jobColumns = `
	j.id, j.title, j.location, j.salary, j.job_type, j.description,
	j.company_name, j.company_website, j.company_description,
	j.experience_required, j.skills_required, j.number_of_openings,
	j.application_last_date, j.responsibilities, j.requirements, j.benefits,
	j.admin_id, u.name, j.created_at, j.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (types.Job, error) {
	var job types.Job
	var skills pq.StringArray
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Location,
		&job.Salary,
		&job.JobType,
		&job.Description,
		&job.CompanyName,
		&job.CompanyWebsite,
		&job.CompanyDescription,
		&job.ExperienceRequired,
		&skills,
		&job.NumberOfOpenings,
		&job.ApplicationLastDate,
		&job.Responsibilities,
		&job.Requirements,
		&job.Benefits,
		&job.AdminID,
		&job.AdminName,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return types.Job{}, err
	}
	job.SkillsRequired = []string(skills)
	if job.SkillsRequired == nil {
		job.SkillsRequired = []string{}
	}
	return job, nil
}

// List returns jobs whose deadline has not passed, newest first, with the
// total count of matching rows.
func (r *JobRepository) List(ctx context.Context, filter types.JobFilter) ([]types.Job, int, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	clause, args := openJobsWhere(filter, r.now())

	var total int
	countQuery := `SELECT COUNT(1) FROM jobs j` + clause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Offset, filter.Limit)
	listQuery := `SELECT` + jobColumns + `
		FROM jobs j
		JOIN users u ON u.id = j.admin_id` + clause + `
		ORDER BY j.created_at DESC, j.id
		OFFSET ` + placeholder(len(args)-1) + ` LIMIT ` + placeholder(len(args))

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := make([]types.Job, 0, filter.Limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// openJobsWhere builds the WHERE clause for List. The deadline cutoff is
// computed here in UTC so it does not depend on the session time zone.
func openJobsWhere(filter types.JobFilter, now time.Time) (string, []any) {
	args := []any{types.OpenDeadline(now)}
	where := []string{"j.application_last_date >= $1"}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := placeholder(len(args))
		where = append(where, "(j.title ILIKE "+n+" OR j.company_name ILIKE "+n+" OR j.description ILIKE "+n+")")
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		args = append(args, "%"+loc+"%")
		where = append(where, "j.location ILIKE "+placeholder(len(args)))
	}
	if jt := strings.TrimSpace(filter.JobType); jt != "" {
		args = append(args, jt)
		where = append(where, "LOWER(j.job_type) = LOWER("+placeholder(len(args))+")")
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// ListByEmployer returns every job owned by the employer, expired ones included.
func (r *JobRepository) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]types.Job, error) {
	const query = `SELECT` + jobColumns + `
		FROM jobs j
		JOIN users u ON u.id = j.admin_id
		WHERE j.admin_id = $1
		ORDER BY j.created_at DESC, j.id`
	rows, err := r.db.QueryContext(ctx, query, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []types.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) Get(ctx context.Context, id uuid.UUID) (types.Job, error) {
	const query = `SELECT` + jobColumns + `
		FROM jobs j
		JOIN users u ON u.id = j.admin_id
		WHERE j.id = $1`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}
	return job, nil
}

// GetOwned returns the job only when it belongs to employerID.
func (r *JobRepository) GetOwned(ctx context.Context, id, employerID uuid.UUID) (types.Job, error) {
	const query = `SELECT` + jobColumns + `
		FROM jobs j
		JOIN users u ON u.id = j.admin_id
		WHERE j.id = $1 AND j.admin_id = $2`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id, employerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	const query = `
		INSERT INTO jobs (
			id, title, location, salary, job_type, description,
			company_name, company_website, company_description,
			experience_required, skills_required, number_of_openings,
			application_last_date, responsibilities, requirements, benefits,
			admin_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.Title,
		job.Location,
		job.Salary,
		job.JobType,
		job.Description,
		job.CompanyName,
		job.CompanyWebsite,
		job.CompanyDescription,
		job.ExperienceRequired,
		pq.StringArray(job.SkillsRequired),
		job.NumberOfOpenings,
		job.ApplicationLastDate,
		job.Responsibilities,
		job.Requirements,
		job.Benefits,
		job.AdminID,
		job.CreatedAt,
		job.UpdatedAt,
	); err != nil {
		return types.Job{}, mapWriteError(err)
	}
	return job, nil
}

// Update rewrites the editable fields. Ownership is matched in the WHERE
// clause so a foreign job is never touched.
func (r *JobRepository) Update(ctx context.Context, job types.Job) (types.Job, error) {
	job.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE jobs
		SET title = $1,
			location = $2,
			salary = $3,
			job_type = $4,
			description = $5,
			company_name = $6,
			company_website = $7,
			company_description = $8,
			experience_required = $9,
			skills_required = $10,
			number_of_openings = $11,
			application_last_date = $12,
			responsibilities = $13,
			requirements = $14,
			benefits = $15,
			updated_at = $16
		WHERE id = $17 AND admin_id = $18`
	result, err := r.db.ExecContext(
		ctx,
		query,
		job.Title,
		job.Location,
		job.Salary,
		job.JobType,
		job.Description,
		job.CompanyName,
		job.CompanyWebsite,
		job.CompanyDescription,
		job.ExperienceRequired,
		pq.StringArray(job.SkillsRequired),
		job.NumberOfOpenings,
		job.ApplicationLastDate,
		job.Responsibilities,
		job.Requirements,
		job.Benefits,
		job.UpdatedAt,
		job.ID,
		job.AdminID,
	)
	if err != nil {
		return types.Job{}, err
	}
	if err := checkAffected(result.RowsAffected()); err != nil {
		return types.Job{}, err
	}
	return r.Get(ctx, job.ID)
}

// Delete removes the job owned by employerID. Applications cascade.
func (r *JobRepository) Delete(ctx context.Context, id, employerID uuid.UUID) error {
	const query = `DELETE FROM jobs WHERE id = $1 AND admin_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, employerID)
	if err != nil {
		return err
	}
	return checkAffected(result.RowsAffected())
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
