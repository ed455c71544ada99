package types

import (
	"time"

	"github.com/google/uuid"
)

// Job is a posting owned by an employer.
type Job struct {
	// ID is the unique identifier of the job.
	ID uuid.UUID `json:"id" db:"id"`

	// Title is the position name.
	Title string `json:"title" db:"title"`

	// Location is where the work happens, free text.
	Location string `json:"location" db:"location"`

	// Salary is a free-text compensation range.
	Salary string `json:"salary" db:"salary"`

	// JobType is the engagement kind, e.g. "Full-time" or "Internship".
	JobType string `json:"job_type" db:"job_type"`

	// Description is the long-form posting body.
	Description string `json:"description" db:"description"`

	CompanyName        string `json:"company_name" db:"company_name"`
	CompanyWebsite     string `json:"company_website" db:"company_website"`
	CompanyDescription string `json:"company_description" db:"company_description"`

	// ExperienceRequired is a free-text experience requirement.
	ExperienceRequired string `json:"experience_required" db:"experience_required"`

	// SkillsRequired lists the skills the employer is looking for.
	SkillsRequired []string `json:"skills_required" db:"skills_required"`

	// NumberOfOpenings is the number of positions to fill, at least one.
	NumberOfOpenings int `json:"number_of_openings" db:"number_of_openings"`

	// ApplicationLastDate is the application deadline. A job stays open
	// through the whole calendar day of its deadline.
	ApplicationLastDate time.Time `json:"application_last_date" db:"application_last_date"`

	Responsibilities string `json:"responsibilities" db:"responsibilities"`
	Requirements     string `json:"requirements" db:"requirements"`
	Benefits         string `json:"benefits" db:"benefits"`

	// AdminID identifies the employer who owns the posting.
	AdminID uuid.UUID `json:"admin_id" db:"admin_id"`

	// AdminName is the owning employer's name. Only populated on reads.
	AdminName string `json:"admin_name,omitempty" db:"admin_name"`

	// CreatedAt is the timestamp when the job was posted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether applications are still accepted at now.
func (j Job) IsOpen(now time.Time) bool {
	return !j.ApplicationLastDate.Before(OpenDeadline(now))
}

// OpenDeadline is the earliest deadline still open at now: midnight UTC of
// the current UTC calendar day.
func OpenDeadline(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// OwnedBy reports whether the job belongs to the given employer.
func (j Job) OwnedBy(userID uuid.UUID) bool {
	return j.AdminID == userID
}

// JobFilter narrows a job listing. Zero values mean no constraint.
type JobFilter struct {
	// Query matches title, company name, or description, case-insensitively.
	Query string

	// Location matches a substring of the location, case-insensitively.
	Location string

	// JobType matches the job type exactly, case-insensitively.
	JobType string

	Offset int
	Limit  int
}
