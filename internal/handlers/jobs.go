package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/careerlens/apiserver/internal/services"
	"github.com/careerlens/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// JobHandler provides HTTP handlers for job postings.
type JobHandler struct {
	jobs *services.JobService
	responder
}

func NewJobHandler(jobs *services.JobService, logger logrus.FieldLogger) *JobHandler {
	return &JobHandler{jobs: jobs, responder: responder{logger: logger}}
}

// JobRouter registers job routes on the given router.
func JobRouter(r chi.Router, h *JobHandler, authn *Authenticator) {
	employerOnly := chi.Chain(authn.RequireAuth, RequireRole(types.RoleEmployer))

	r.Get("/", h.ListJobs)
	r.With(employerOnly...).Post("/", h.CreateJob)
	r.With(employerOnly...).Get("/admin/my-jobs", h.MyJobs)
	r.Route("/{id}", func(r chi.Router) {
		r.With(authn.OptionalAuth).Get("/", h.GetJob)
		r.With(employerOnly...).Put("/", h.UpdateJob)
		r.With(employerOnly...).Delete("/", h.DeleteJob)
	})
}

// ListJobs returns open postings, newest first. The total number of matches
// is reported in X-Total-Count.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	_, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	jobs, total, err := h.jobs.List(r.Context(), types.JobFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Location: strings.TrimSpace(q.Get("location")),
		JobType:  strings.TrimSpace(q.Get("job_type")),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		h.fail(w, r, err, "job not found", "failed to fetch jobs")
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, jobs)
}

// GetJob returns one posting. Expired postings are visible to their owner only.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	var viewer *types.User
	if user, ok := UserFromContext(r.Context()); ok {
		viewer = &user
	}

	job, err := h.jobs.Get(r.Context(), id, viewer)
	if err != nil {
		h.fail(w, r, err, "job not found", "failed to fetch job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// MyJobs returns every posting owned by the caller, expired ones included.
func (h *JobHandler) MyJobs(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	jobs, err := h.jobs.ListByEmployer(r.Context(), user)
	if err != nil {
		h.fail(w, r, err, "job not found", "failed to fetch your jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, _ := UserFromContext(r.Context())
	job, err := h.jobs.Create(r.Context(), user, req.toJob())
	if err != nil {
		h.fail(w, r, err, "job not found", "failed to post job")
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// UpdateJob replaces a posting. Missing and foreign postings both yield 403.
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusForbidden, "you do not have permission to edit this job")
		return
	}

	var req JobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, _ := UserFromContext(r.Context())
	job := req.toJob()
	job.ID = id
	updated, err := h.jobs.Update(r.Context(), user, job)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			writeError(w, http.StatusForbidden, "you do not have permission to edit this job")
			return
		}
		h.fail(w, r, err, "job not found", "failed to update job")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteJob removes a posting and its applications.
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusForbidden, "you do not have permission to delete this job")
		return
	}

	user, _ := UserFromContext(r.Context())
	if err := h.jobs.Delete(r.Context(), user, id); err != nil {
		if errors.Is(err, services.ErrForbidden) {
			writeError(w, http.StatusForbidden, "you do not have permission to delete this job")
			return
		}
		h.fail(w, r, err, "job not found", "failed to delete job")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "job deleted successfully"})
}

// JobRequest is the create and update body for a posting.
type JobRequest struct {
	Title               string     `json:"title" validate:"required,max=200"`
	Location            string     `json:"location" validate:"required,max=200"`
	Salary              string     `json:"salary" validate:"required,max=100"`
	JobType             string     `json:"job_type" validate:"required,max=50"`
	Description         string     `json:"description" validate:"required"`
	CompanyName         string     `json:"company_name" validate:"required,max=200"`
	CompanyWebsite      string     `json:"company_website" validate:"max=500"`
	CompanyDescription  string     `json:"company_description"`
	ExperienceRequired  string     `json:"experience_required" validate:"required,max=100"`
	SkillsRequired      StringList `json:"skills_required" validate:"min=1,max=50"`
	NumberOfOpenings    int        `json:"number_of_openings" validate:"required,min=1"`
	ApplicationLastDate Date       `json:"application_last_date" validate:"required"`
	Responsibilities    string     `json:"responsibilities" validate:"required"`
	Requirements        string     `json:"requirements" validate:"required"`
	Benefits            string     `json:"benefits"`
}

func (req *JobRequest) normalize() {
	for _, field := range []*string{
		&req.Title, &req.Location, &req.Salary, &req.JobType, &req.Description,
		&req.CompanyName, &req.CompanyWebsite, &req.CompanyDescription,
		&req.ExperienceRequired, &req.Responsibilities, &req.Requirements, &req.Benefits,
	} {
		*field = strings.TrimSpace(*field)
	}
}

func (req JobRequest) toJob() types.Job {
	return types.Job{
		Title:               req.Title,
		Location:            req.Location,
		Salary:              req.Salary,
		JobType:             req.JobType,
		Description:         req.Description,
		CompanyName:         req.CompanyName,
		CompanyWebsite:      req.CompanyWebsite,
		CompanyDescription:  req.CompanyDescription,
		ExperienceRequired:  req.ExperienceRequired,
		SkillsRequired:      []string(req.SkillsRequired),
		NumberOfOpenings:    req.NumberOfOpenings,
		ApplicationLastDate: req.ApplicationLastDate.Time,
		Responsibilities:    req.Responsibilities,
		Requirements:        req.Requirements,
		Benefits:            req.Benefits,
	}
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("invalid page")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, errors.New("invalid limit")
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset = (page - 1) * limit
	return page, limit, offset, nil
}
