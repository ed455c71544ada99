package services

import "github.com/careerlens/apiserver/types"

// CheckRole returns ErrForbidden unless user has exactly role.
func CheckRole(user types.User, role types.Role) error {
	if user.Role != role {
		return ErrForbidden
	}
	return nil
}
