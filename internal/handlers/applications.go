package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/careerlens/apiserver/internal/services"
	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const applicationNotFound = "application not found"

// ApplicationHandler provides HTTP handlers for applications.
type ApplicationHandler struct {
	applications *services.ApplicationService
	responder
}

func NewApplicationHandler(applications *services.ApplicationService, logger logrus.FieldLogger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, responder: responder{logger: logger}}
}

// ApplicationRouter registers application and match routes on the given
// router. On POST /{id} the id is the job being applied to; everywhere else
// it is an application id.
func ApplicationRouter(r chi.Router, h *ApplicationHandler, match *MatchHandler, authn *Authenticator) {
	seekerOnly := RequireRole(types.RoleSeeker)
	employerOnly := RequireRole(types.RoleEmployer)

	r.Group(func(r chi.Router) {
		r.Use(authn.RequireAuth)

		r.With(seekerOnly).Get("/my", h.ListMine)
		r.With(employerOnly).Get("/job/{jobID}", h.ListForJob)

		r.With(seekerOnly).Post("/{id}", h.Apply)
		r.With(seekerOnly).Get("/{id}", h.GetMine)
		r.With(seekerOnly).Put("/{id}", h.UpdateMine)
		r.With(seekerOnly).Delete("/{id}", h.Withdraw)
		r.With(employerOnly).Put("/{id}/status", h.UpdateStatus)

		r.With(employerOnly).Post("/{id}/match", match.RequestMatch)
		r.Get("/{id}/match", match.LatestMatch)
	})
}

// Apply submits the caller's application to the job in the path.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	jobID, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	var req ApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, _ := UserFromContext(r.Context())
	app, err := h.applications.Apply(r.Context(), user, jobID, req.toInput())
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusBadRequest, "you have already applied for this job")
			return
		}
		h.fail(w, r, err, "job not found", "failed to apply")
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// ListMine returns the caller's applications with a summary of each job.
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	apps, err := h.applications.ListMine(r.Context(), user)
	if err != nil {
		h.fail(w, r, err, applicationNotFound, "failed to fetch your applications")
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, applicationNotFound)
		return
	}

	user, _ := UserFromContext(r.Context())
	app, err := h.applications.GetMine(r.Context(), user, id)
	if err != nil {
		h.fail(w, r, err, applicationNotFound, "failed to fetch application")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// UpdateMine edits the applicant fields of one of the caller's applications.
func (h *ApplicationHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, applicationNotFound)
		return
	}

	var req ApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, _ := UserFromContext(r.Context())
	app, err := h.applications.UpdateMine(r.Context(), user, id, req.toInput())
	if err != nil {
		h.fail(w, r, err, applicationNotFound, "failed to update application")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Withdraw deletes one of the caller's applications.
func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, applicationNotFound)
		return
	}

	user, _ := UserFromContext(r.Context())
	if err := h.applications.Withdraw(r.Context(), user, id); err != nil {
		h.fail(w, r, err, applicationNotFound, "failed to withdraw application")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "application withdrawn successfully"})
}

// ListForJob returns the applicants of a job the caller owns.
func (h *ApplicationHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := parseUUIDParam(r, "jobID")
	if err != nil {
		writeError(w, http.StatusForbidden, "you do not have permission to view this job's applications")
		return
	}

	user, _ := UserFromContext(r.Context())
	apps, err := h.applications.ListForJob(r.Context(), user, jobID)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			writeError(w, http.StatusForbidden, "you do not have permission to view this job's applications")
			return
		}
		h.fail(w, r, err, "job not found", "failed to fetch applicants")
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// UpdateStatus moves an application of the caller's job to a review status.
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := types.ParseReviewStatus(req.Status); !ok {
		writeError(w, http.StatusBadRequest, "invalid status provided")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, applicationNotFound)
		return
	}

	user, _ := UserFromContext(r.Context())
	app, err := h.applications.UpdateStatus(r.Context(), user, id, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			writeError(w, http.StatusForbidden, "you do not have permission to modify this application")
			return
		}
		h.fail(w, r, err, applicationNotFound, "failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// ApplicationRequest is the submit and edit body for an application.
type ApplicationRequest struct {
	FullName    string `json:"full_name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email,max=320"`
	PhoneNumber string `json:"phone_number" validate:"required,max=50"`
	Skills      string `json:"skills" validate:"required"`
	Experience  string `json:"experience" validate:"required"`
	ResumeURL   string `json:"resume_url" validate:"required"`
	GithubURL   string `json:"github_url" validate:"max=500"`
	LinkedinURL string `json:"linkedin_url" validate:"max=500"`
}

func (req *ApplicationRequest) normalize() {
	for _, field := range []*string{
		&req.FullName, &req.Email, &req.PhoneNumber, &req.Skills,
		&req.Experience, &req.ResumeURL, &req.GithubURL, &req.LinkedinURL,
	} {
		*field = strings.TrimSpace(*field)
	}
}

func (req ApplicationRequest) toInput() types.ApplicationInput {
	return types.ApplicationInput{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Skills:      req.Skills,
		Experience:  req.Experience,
		ResumeURL:   req.ResumeURL,
		GithubURL:   req.GithubURL,
		LinkedinURL: req.LinkedinURL,
	}
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (req *StatusRequest) normalize() {
	req.Status = strings.TrimSpace(req.Status)
}
