package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

// ConnectionServer holds a live connection open for a user.
type ConnectionServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID)
}

// Notifications upgrades the request to a websocket carrying the caller's
// application events. It must run after RequireAuth.
func Notifications(hub ConnectionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		hub.Serve(w, r, user.ID)
	}
}
