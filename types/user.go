package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role of an account.
type Role string

// Supported roles.
const (
	// RoleSeeker browses jobs and submits applications.
	RoleSeeker Role = "seeker"

	// RoleEmployer posts jobs and triages their applicants.
	RoleEmployer Role = "employer"
)

// ParseRole maps a signup role to its canonical value. The legacy names
// "user" and "admin" are accepted as seeker and employer.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleSeeker), "user":
		return RoleSeeker, true
	case string(RoleEmployer), "admin":
		return RoleEmployer, true
	default:
		return "", false
	}
}

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID uuid.UUID `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address, stored lower-case.
	Email string `json:"email" db:"email"`

	// Role is either seeker or employer.
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
