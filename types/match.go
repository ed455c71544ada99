package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FitLevel buckets a match percentage for display.
type FitLevel string

const (
	FitExcellent FitLevel = "Excellent Fit"
	FitGood      FitLevel = "Good Fit"
	FitPartial   FitLevel = "Partial Fit"
	FitNone      FitLevel = "Not a Fit"
)

// FitLevelFor derives the bucket from a percentage.
func FitLevelFor(percentage int) FitLevel {
	switch {
	case percentage >= 80:
		return FitExcellent
	case percentage >= 60:
		return FitGood
	case percentage >= 40:
		return FitPartial
	default:
		return FitNone
	}
}

// NormalizeFitLevel maps a free-form label onto a known bucket, falling
// back to the bucket for percentage when the label is unrecognised.
func NormalizeFitLevel(label string, percentage int) FitLevel {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "not"), strings.Contains(l, "poor"), strings.Contains(l, "no fit"):
		return FitNone
	case strings.Contains(l, "excellent"), strings.Contains(l, "strong"):
		return FitExcellent
	case strings.Contains(l, "partial"), strings.Contains(l, "moderate"), strings.Contains(l, "fair"):
		return FitPartial
	case strings.Contains(l, "good"):
		return FitGood
	default:
		return FitLevelFor(percentage)
	}
}

// MatchResult is a model-produced assessment of how well an application
// fits its job.
type MatchResult struct {
	// ID is the unique identifier of the result.
	ID uuid.UUID `json:"id" db:"id"`

	// ApplicationID identifies the scored application.
	ApplicationID uuid.UUID `json:"application_id" db:"application_id"`

	// MatchPercentage is the overall score in the range 0..100.
	MatchPercentage int `json:"match_percentage" db:"match_percentage"`

	// MatchedSkills lists required skills the applicant has.
	MatchedSkills []string `json:"matched_skills" db:"matched_skills"`

	// MissingSkills lists required skills the applicant lacks.
	MissingSkills []string `json:"missing_skills" db:"missing_skills"`

	// FitLevel is the display bucket.
	FitLevel FitLevel `json:"fit_level" db:"fit_level"`

	// Summary is a short free-text rationale.
	Summary string `json:"summary" db:"summary"`

	// Model names the model that produced the result.
	Model string `json:"model" db:"model"`

	// CreatedAt is the timestamp when the result was stored.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MatchRequest asks the worker to score an application.
type MatchRequest struct {
	ApplicationID uuid.UUID `json:"application_id"`
	RequestedBy   uuid.UUID `json:"requested_by"`
}
