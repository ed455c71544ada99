package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/careerlens/apiserver/internal/auth"
	"github.com/careerlens/apiserver/internal/handlers"
	"github.com/careerlens/apiserver/internal/mq"
	"github.com/careerlens/apiserver/internal/storage"
	"github.com/careerlens/apiserver/internal/store/storetest"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	db      *storetest.DB
	handler http.Handler
}

func newTestEnv(t *testing.T, configure ...func(*Dependencies)) *testEnv {
	t.Helper()
	logger, _ := test.NewNullLogger()
	db := storetest.New()
	deps := Dependencies{
		Users:        db.Users,
		Jobs:         db.Jobs,
		Applications: db.Applications,
		Matches:      db.Matches,
		Tokens:       auth.NewTokenManager("test-secret", time.Hour),
		Logger:       logger,
		HashCost:     bcrypt.MinCost,
	}
	for _, fn := range configure {
		fn(&deps)
	}
	return &testEnv{db: db, handler: NewApp(deps).Handler}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = strings.NewReader(raw)
		} else {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type session struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

func (e *testEnv) signup(t *testing.T, name, role string) session {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[session](t, rec)
}

func jobBody(deadline time.Time) map[string]any {
	return map[string]any{
		"title":                 "Backend Engineer",
		"location":              "Remote",
		"salary":                "100k-120k",
		"job_type":              "Full-time",
		"description":           "Build APIs in Go",
		"company_name":          "Acme",
		"experience_required":   "3+ years",
		"skills_required":       "Go, PostgreSQL, go",
		"number_of_openings":    2,
		"application_last_date": deadline.Format(time.DateOnly),
		"responsibilities":      "Ship features",
		"requirements":          "Go experience",
	}
}

func applicationBody(name string) map[string]string {
	return map[string]string{
		"full_name":    name,
		"email":        name + "@example.com",
		"phone_number": "+1 555 0100",
		"skills":       "Go, SQL",
		"experience":   "4 years",
		"resume_url":   "https://example.com/" + name + ".pdf",
	}
}

func (e *testEnv) postJob(t *testing.T, token string, deadline time.Time) types.Job {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/jobs", token, jobBody(deadline))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[types.Job](t, rec)
}

func (e *testEnv) apply(t *testing.T, token string, jobID uuid.UUID, name string) types.Application {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/applications/"+jobID.String(), token, applicationBody(name))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[types.Application](t, rec)
}

func nextMonth() time.Time {
	return time.Now().UTC().AddDate(0, 1, 0)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/health", "", nil).Code)
}

func TestSignupLoginMe(t *testing.T) {
	env := newTestEnv(t)
	signed := env.signup(t, "sam", "user")
	assert.Equal(t, types.RoleSeeker, signed.User.Role)
	assert.NotContains(t, env.do(t, http.MethodGet, "/api/auth/me", signed.Token, nil).Body.String(), "password")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "SAM@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[session](t, rec)
	assert.Equal(t, signed.User.ID, login.User.ID)

	rec = env.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, signed.User.ID, decode[types.User](t, rec).ID)
}

func TestSignupRejections(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "sam", "seeker")

	tests := []struct {
		name string
		body any
		want string
	}{
		{"duplicate email", map[string]string{"name": "Sam", "email": "sam@example.com", "password": "password123", "role": "seeker"}, "user already exists"},
		{"bad role", map[string]string{"name": "Sam", "email": "new@example.com", "password": "password123", "role": "root"}, "role must be seeker or employer"},
		{"missing name", map[string]string{"email": "new@example.com", "password": "password123", "role": "seeker"}, "name is required"},
		{"short password", map[string]string{"name": "Sam", "email": "new@example.com", "password": "123", "role": "seeker"}, "password must be at least 6 characters"},
		{"bad email", map[string]string{"name": "Sam", "email": "nope", "password": "password123", "role": "seeker"}, "email must be a valid email address"},
		{"unknown field", map[string]string{"name": "Sam", "email": "new@example.com", "password": "password123", "role": "seeker", "admin": "yes"}, "unknown field"},
		{"not json", "{", "request body is not valid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/signup", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec)["error"], tt.want)
		})
	}

	rec := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": "Legacy", "email": "legacy@example.com", "password": "password123", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	legacy := decode[session](t, rec)
	assert.Equal(t, "Legacy", legacy.User.Name)
	assert.Equal(t, types.RoleEmployer, legacy.User.Role)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "sam", "seeker")

	wrong := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "sam@example.com", "password": "nope"})
	unknown := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "who@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/auth/me", "garbage", nil).Code)

	other := auth.NewTokenManager("other-secret", time.Hour)
	forged, err := other.Issue(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/auth/me", forged, nil).Code)

	ghost, err := auth.NewTokenManager("test-secret", time.Hour).Issue(uuid.New())
	require.NoError(t, err)
	rec := env.do(t, http.MethodGet, "/api/auth/me", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmployerSeesExactlyOneApplicant(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signup(t, "erin", "employer")
	job := env.postJob(t, employer.Token, nextMonth())
	assert.Equal(t, []string{"Go", "PostgreSQL"}, job.SkillsRequired)
	assert.Equal(t, "erin", job.AdminName)

	seeker := env.signup(t, "sam", "seeker")
	env.apply(t, seeker.Token, job.ID, "sam")

	rec := env.do(t, http.MethodGet, "/api/applications/job/"+job.ID.String(), employer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	applicants := decode[[]map[string]any](t, rec)
	require.Len(t, applicants, 1)
	assert.Equal(t, "sam", applicants[0]["full_name"])
	assert.Equal(t, "sam@example.com", applicants[0]["email"])
	assert.Equal(t, "sam", applicants[0]["applicant_name"])
	assert.Equal(t, "applied", applicants[0]["status"])
	assert.Equal(t, seeker.User.ID.String(), applicants[0]["user_id"])
}

func TestJobListing(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signup(t, "erin", "employer")
	seeker := env.signup(t, "sam", "seeker")
	open := env.postJob(t, employer.Token, nextMonth())
	expired := env.postJob(t, employer.Token, time.Now().UTC().AddDate(0, 0, -3))

	rec := env.do(t, http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	jobs := decode[[]types.Job](t, rec)
	require.Len(t, jobs, 1)
	assert.Equal(t, open.ID, jobs[0].ID)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/jobs?q=backend&location=remote", "", nil).Code)
	assert.Equal(t, "0", env.do(t, http.MethodGet, "/api/jobs?job_type=internship", "", nil).Header().Get("X-Total-Count"))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/jobs?page=0", "", nil).Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/jobs/"+expired.ID.String(), "", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/jobs/"+expired.ID.String(), seeker.Token, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/jobs/"+expired.ID.String(), employer.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/jobs/not-a-uuid", "", nil).Code)

	rec = env.do(t, http.MethodGet, "/api/jobs/admin/my-jobs", employer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]types.Job](t, rec), 2)

	rec = env.do(t, http.MethodPost, "/api/applications/"+expired.ID.String(), seeker.Token, applicationBody("sam"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/jobs/admin/my-jobs", seeker.Token, nil).Code)
}

func TestJobCreateRules(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signup(t, "erin", "employer")
	seeker := env.signup(t, "sam", "seeker")

	rec := env.do(t, http.MethodPost, "/api/jobs", seeker.Token, jobBody(nextMonth()))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := jobBody(nextMonth())
	body["number_of_openings"] = 0
	rec = env.do(t, http.MethodPost, "/api/jobs", employer.Token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = jobBody(nextMonth())
	body["skills_required"] = []string{}
	rec = env.do(t, http.MethodPost, "/api/jobs", employer.Token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = jobBody(nextMonth())
	body["application_last_date"] = "next tuesday"
	rec = env.do(t, http.MethodPost, "/api/jobs", employer.Token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = jobBody(nextMonth())
	delete(body, "title")
	rec = env.do(t, http.MethodPost, "/api/jobs", employer.Token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", decode[map[string]string](t, rec)["error"])
}

func TestNonOwnerCannotMutateJob(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "owner", "employer")
	other := env.signup(t, "other", "employer")
	job := env.postJob(t, owner.Token, nextMonth())
	path := "/api/jobs/" + job.ID.String()

	update := jobBody(nextMonth())
	update["title"] = "Hijacked"
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPut, path, other.Token, update).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, path, other.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPut, "/api/jobs/"+uuid.NewString(), owner.Token, update).Code)

	rec := env.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend Engineer", decode[types.Job](t, rec).Title)

	rec = env.do(t, http.MethodPut, path, owner.Token, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Hijacked", decode[types.Job](t, rec).Title)

	rec = env.do(t, http.MethodDelete, path, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "job deleted successfully", decode[map[string]string](t, rec)["message"])
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, "", nil).Code)
}

func TestDuplicateApplication(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signup(t, "erin", "employer")
	seeker := env.signup(t, "sam", "seeker")
	job := env.postJob(t, employer.Token, nextMonth())
	env.apply(t, seeker.Token, job.ID, "sam")

	rec := env.do(t, http.MethodPost, "/api/applications/"+job.ID.String(), seeker.Token, applicationBody("sam"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "you have already applied for this job", decode[map[string]string](t, rec)["error"])
	assert.Equal(t, 1, env.db.ApplicationCount(seeker.User.ID, job.ID))

	rec = env.do(t, http.MethodPost, "/api/applications/"+job.ID.String(), employer.Token, applicationBody("erin"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/applications/"+uuid.NewString(), seeker.Token, applicationBody("sam"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusUpdates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "owner", "employer")
	other := env.signup(t, "other", "employer")
	seeker := env.signup(t, "sam", "seeker")
	job := env.postJob(t, owner.Token, nextMonth())
	app := env.apply(t, seeker.Token, job.ID, "sam")
	path := "/api/applications/" + app.ID.String() + "/status"

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPut, path, seeker.Token, map[string]string{"status": "selected"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, path, owner.Token, map[string]string{"status": "hired"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, path, owner.Token, map[string]string{"status": "applied"}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/applications/"+uuid.NewString()+"/status", owner.Token, map[string]string{"status": "selected"}).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPut, path, other.Token, map[string]string{"status": "selected"}).Code)

	rec := env.do(t, http.MethodPut, path, owner.Token, map[string]string{"status": "Shortlisted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, types.StatusShortlisted, decode[types.Application](t, rec).Status)

	rec = env.do(t, http.MethodGet, "/api/applications/"+app.ID.String(), seeker.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[types.Application](t, rec)
	assert.Equal(t, types.StatusShortlisted, mine.Status)
	require.NotNil(t, mine.JobSummary)
	assert.Equal(t, "Acme", mine.CompanyName)
}

func TestSeekerOwnership(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signup(t, "erin", "employer")
	sam := env.signup(t, "sam", "seeker")
	tess := env.signup(t, "tess", "seeker")
	job := env.postJob(t, employer.Token, nextMonth())
	app := env.apply(t, sam.Token, job.ID, "sam")
	path := "/api/applications/" + app.ID.String()

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, tess.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, path, tess.Token, applicationBody("tess")).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, tess.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, employer.Token, nil).Code)

	edit := applicationBody("sam")
	edit["experience"] = "6 years"
	rec := env.do(t, http.MethodPut, path, sam.Token, edit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "6 years", decode[types.Application](t, rec).Experience)
}

func TestWithdrawRemovesFromMyApplications(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signup(t, "erin", "employer")
	seeker := env.signup(t, "sam", "seeker")
	job := env.postJob(t, employer.Token, nextMonth())
	app := env.apply(t, seeker.Token, job.ID, "sam")

	rec := env.do(t, http.MethodGet, "/api/applications/my", seeker.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]types.Application](t, rec), 1)

	rec = env.do(t, http.MethodDelete, "/api/applications/"+app.ID.String(), seeker.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/applications/my", seeker.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]types.Application](t, rec))
}

type stubScorer struct{}

func (stubScorer) Score(_ context.Context, _ types.Job, _ types.Application) (types.MatchResult, error) {
	return types.MatchResult{
		MatchPercentage: 65,
		MatchedSkills:   []string{"Go"},
		MissingSkills:   []string{},
		FitLevel:        types.FitGood,
		Model:           "stub",
	}, nil
}

func TestMatchEndpoints(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		env := newTestEnv(t)
		employer := env.signup(t, "erin", "employer")
		seeker := env.signup(t, "sam", "seeker")
		job := env.postJob(t, employer.Token, nextMonth())
		app := env.apply(t, seeker.Token, job.ID, "sam")

		rec := env.do(t, http.MethodPost, "/api/applications/"+app.ID.String()+"/match", employer.Token, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("inline", func(t *testing.T) {
		env := newTestEnv(t, func(d *Dependencies) { d.Scorer = stubScorer{} })
		employer := env.signup(t, "erin", "employer")
		seeker := env.signup(t, "sam", "seeker")
		job := env.postJob(t, employer.Token, nextMonth())
		app := env.apply(t, seeker.Token, job.ID, "sam")
		path := "/api/applications/" + app.ID.String() + "/match"

		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, seeker.Token, nil).Code)
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, path, seeker.Token, nil).Code)

		rec := env.do(t, http.MethodPost, path, employer.Token, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, 65, decode[types.MatchResult](t, rec).MatchPercentage)

		rec = env.do(t, http.MethodGet, path, seeker.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, types.FitGood, decode[types.MatchResult](t, rec).FitLevel)
	})

	t.Run("queued", func(t *testing.T) {
		bus := mq.New(mq.NewMemoryBackend())
		defer bus.Close()
		env := newTestEnv(t, func(d *Dependencies) {
			d.Bus = bus
			d.QueueMatches = true
		})
		employer := env.signup(t, "erin", "employer")
		seeker := env.signup(t, "sam", "seeker")
		job := env.postJob(t, employer.Token, nextMonth())
		app := env.apply(t, seeker.Token, job.ID, "sam")

		rec := env.do(t, http.MethodPost, "/api/applications/"+app.ID.String()+"/match", employer.Token, nil)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		assert.Equal(t, app.ID, decode[handlers.MatchQueuedResponse](t, rec).ApplicationID)
	})
}

func multipartResume(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestResumeEndpoints(t *testing.T) {
	unconfigured := newTestEnv(t)
	seeker := unconfigured.signup(t, "sam", "seeker")
	body, contentType := multipartResume(t, "cv.pdf", "%PDF")
	req := httptest.NewRequest(http.MethodPost, "/api/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+seeker.Token)
	rec := httptest.NewRecorder()
	unconfigured.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env := newTestEnv(t, func(d *Dependencies) { d.Objects = storage.NewMemoryStorage("resumes") })
	seeker = env.signup(t, "sam", "seeker")
	employer := env.signup(t, "erin", "employer")
	stranger := env.signup(t, "tess", "seeker")

	body, contentType = multipartResume(t, "cv.txt", "Go developer")
	req = httptest.NewRequest(http.MethodPost, "/api/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+seeker.Token)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	uploaded := decode[map[string]string](t, rec)
	assert.True(t, strings.HasPrefix(uploaded["key"], "resumes/"+seeker.User.ID.String()+"/"))

	rec = env.do(t, http.MethodGet, uploaded["url"], employer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Go developer", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, uploaded["url"], stranger.Token, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, uploaded["url"], seeker.Token, nil).Code)
}

func TestNotificationsOverWebsocket(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	employer := env.signup(t, "erin", "employer")
	seeker := env.signup(t, "sam", "seeker")
	job := env.postJob(t, employer.Token, nextMonth())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + employer.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello map[string]string
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello["type"])

	app := env.apply(t, seeker.Token, job.ID, "sam")

	var event types.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, types.EventApplicationSubmitted, event.Type)
	assert.Equal(t, app.ID, event.ApplicationID)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
