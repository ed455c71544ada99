package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/careerlens/apiserver/internal/services"
	"github.com/careerlens/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const formFieldResume = "resume"

// ResumeHandler uploads and serves resume files.
type ResumeHandler struct {
	resumes *services.ResumeService
	responder
}

func NewResumeHandler(resumes *services.ResumeService, logger logrus.FieldLogger) *ResumeHandler {
	return &ResumeHandler{resumes: resumes, responder: responder{logger: logger}}
}

// ResumeRouter registers resume routes on the given router.
func ResumeRouter(r chi.Router, h *ResumeHandler, authn *Authenticator) {
	r.Use(authn.RequireAuth)
	r.With(RequireRole(types.RoleSeeker)).Post("/", h.Upload)
	r.Get("/{userID}/{name}", h.Download)
}

type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Upload stores the multipart "resume" file for the caller.
func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.resumes.Available() {
		h.fail(w, r, services.ErrUnavailable, "", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxResumeSize+(1<<20))
	if err := r.ParseMultipartForm(services.MaxResumeSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusBadRequest, "resume must be at most 10 MiB")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(formFieldResume)
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	user, _ := UserFromContext(r.Context())
	key, err := h.resumes.Upload(r.Context(), user, header.Filename, file, header.Size)
	if err != nil {
		h.fail(w, r, err, "resume not found", "failed to upload resume")
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{
		Key: key,
		URL: "/api/resumes/" + user.ID.String() + "/" + path.Base(key),
	})
}

// Download streams a resume to its owner or to an employer.
func (h *ResumeHandler) Download(w http.ResponseWriter, r *http.Request) {
	ownerID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusNotFound, "resume not found")
		return
	}

	user, _ := UserFromContext(r.Context())
	obj, err := h.resumes.Open(r.Context(), user, ownerID, chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err, "resume not found", "failed to load resume")
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.WithError(err).Warn("stream resume interrupted")
	}
}
