package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

// Supported statuses. Every application starts as applied; the owning
// employer may move it to any of the other three at any time.
const (
	StatusApplied     ApplicationStatus = "applied"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusSelected    ApplicationStatus = "selected"
	StatusRejected    ApplicationStatus = "rejected"
)

// ParseReviewStatus maps employer input to a status the employer may set.
// Matching is case-insensitive; "applied" is not accepted.
func ParseReviewStatus(s string) (ApplicationStatus, bool) {
	switch status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case StatusShortlisted, StatusSelected, StatusRejected:
		return status, true
	default:
		return "", false
	}
}

// Application is a seeker's submission to a job.
type Application struct {
	// ID is the unique identifier of the application.
	ID uuid.UUID `json:"id" db:"id"`

	// UserID identifies the seeker who applied.
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	// JobID identifies the job applied to.
	JobID uuid.UUID `json:"job_id" db:"job_id"`

	// Status is the review state.
	Status ApplicationStatus `json:"status" db:"status"`

	FullName    string `json:"full_name" db:"full_name"`
	Email       string `json:"email" db:"email"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`

	// Skills is the applicant's free-text skills summary.
	Skills string `json:"skills" db:"skills"`

	// Experience is the applicant's free-text experience summary.
	Experience string `json:"experience" db:"experience"`

	// ResumeURL holds pasted resume text, a link, or an uploaded resume key.
	ResumeURL string `json:"resume_url" db:"resume_url"`

	GithubURL   string `json:"github_url" db:"github_url"`
	LinkedinURL string `json:"linkedin_url" db:"linkedin_url"`

	// AppliedAt is the timestamp when the application was submitted.
	AppliedAt time.Time `json:"applied_at" db:"applied_at"`

	// UpdatedAt is the timestamp of the most recent change.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// JobSummary is joined in for the seeker's own listings.
	*JobSummary

	// ApplicantSummary is joined in for the employer's applicant listings.
	*ApplicantSummary
}

// JobSummary is the slice of a job shown next to a seeker's application.
type JobSummary struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	JobType     string `json:"job_type"`
	CompanyName string `json:"company_name"`
}

// ApplicantSummary identifies the account behind an application.
type ApplicantSummary struct {
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
}

// ApplicationInput carries the applicant-supplied fields of an application.
type ApplicationInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Skills      string
	Experience  string
	ResumeURL   string
	GithubURL   string
	LinkedinURL string
}

// Apply copies the input onto the application.
func (in ApplicationInput) Apply(app *Application) {
	app.FullName = in.FullName
	app.Email = in.Email
	app.PhoneNumber = in.PhoneNumber
	app.Skills = in.Skills
	app.Experience = in.Experience
	app.ResumeURL = in.ResumeURL
	app.GithubURL = in.GithubURL
	app.LinkedinURL = in.LinkedinURL
}
