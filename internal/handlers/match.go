package handlers

import (
	"net/http"

	"github.com/careerlens/apiserver/internal/services"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MatchHandler exposes fit scoring for applications.
type MatchHandler struct {
	matches *services.MatchService
	responder
}

func NewMatchHandler(matches *services.MatchService, logger logrus.FieldLogger) *MatchHandler {
	return &MatchHandler{matches: matches, responder: responder{logger: logger}}
}

// MatchQueuedResponse acknowledges a scoring request handed to the worker.
type MatchQueuedResponse struct {
	Message       string    `json:"message"`
	ApplicationID uuid.UUID `json:"application_id"`
}

// RequestMatch scores an application of the caller's job. It answers 202
// when the work was queued and 201 with the result when scored inline.
func (h *MatchHandler) RequestMatch(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, applicationNotFound)
		return
	}

	user, _ := UserFromContext(r.Context())
	result, queued, err := h.matches.Request(r.Context(), user, id)
	if err != nil {
		h.fail(w, r, err, applicationNotFound, "failed to score application")
		return
	}
	if queued {
		writeJSON(w, http.StatusAccepted, MatchQueuedResponse{Message: "match scoring queued", ApplicationID: id})
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// LatestMatch returns the newest result for an application the caller may see.
func (h *MatchHandler) LatestMatch(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, applicationNotFound)
		return
	}

	user, _ := UserFromContext(r.Context())
	result, err := h.matches.Latest(r.Context(), user, id)
	if err != nil {
		h.fail(w, r, err, "match result not found", "failed to load match result")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
