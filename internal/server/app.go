package server

import (
	"net/http"
	"time"

	"github.com/careerlens/apiserver/internal/auth"
	"github.com/careerlens/apiserver/internal/handlers"
	"github.com/careerlens/apiserver/internal/mq"
	"github.com/careerlens/apiserver/internal/notify"
	"github.com/careerlens/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 60 * time.Second

// Dependencies are the collaborators the router is built from. Bus,
// Scorer, Objects, and DB are optional.
type Dependencies struct {
	Users        services.UserRepository
	Jobs         services.JobRepository
	Applications services.ApplicationRepository
	Matches      services.MatchRepository
	Tokens       *auth.TokenManager

	Bus     *mq.MQ
	Scorer  services.FitScorer
	Objects services.ObjectStore
	DB      handlers.Pinger

	// QueueMatches hands match requests to the worker over Bus instead of
	// scoring them inline.
	QueueMatches bool

	AllowedOrigins []string
	Logger         *logrus.Logger

	// HashCost is the bcrypt cost for new passwords; zero uses the default.
	HashCost int
}

// App is the wired HTTP surface and the services behind it.
type App struct {
	Handler http.Handler
	Matches *services.MatchService
	Hub     *notify.Hub
}

// NewApp wires services and routes.
func NewApp(deps Dependencies) *App {
	logger := deps.Logger
	hub := notify.NewHub(deps.AllowedOrigins, logger)
	dispatcher := services.NewDispatcher(deps.Bus, hub, logger)

	var queue services.MatchQueue
	if deps.QueueMatches && dispatcher.HasBus() {
		queue = dispatcher
	}

	users := services.NewUserService(deps.Users, deps.HashCost)
	jobs := services.NewJobService(deps.Jobs)
	applications := services.NewApplicationService(deps.Applications, jobs, dispatcher)
	matches := services.NewMatchService(applications, deps.Matches, deps.Scorer, queue, dispatcher)
	resumes := services.NewResumeService(deps.Objects)

	authn := handlers.NewAuthenticator(users, deps.Tokens, logger)
	authHandler := handlers.NewAuthHandler(users, deps.Tokens, logger)
	jobHandler := handlers.NewJobHandler(jobs, logger)
	applicationHandler := handlers.NewApplicationHandler(applications, logger)
	matchHandler := handlers.NewMatchHandler(matches, logger)
	resumeHandler := handlers.NewResumeHandler(resumes, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Total-Count", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health(deps.DB))
		r.With(authn.RequireAuth).Get("/ws", handlers.Notifications(hub))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Route("/auth", func(r chi.Router) {
				handlers.AuthRouter(r, authHandler, authn)
			})
			r.Route("/jobs", func(r chi.Router) {
				handlers.JobRouter(r, jobHandler, authn)
			})
			r.Route("/applications", func(r chi.Router) {
				handlers.ApplicationRouter(r, applicationHandler, matchHandler, authn)
			})
			r.Route("/resumes", func(r chi.Router) {
				handlers.ResumeRouter(r, resumeHandler, authn)
			})
		})
	})

	return &App{Handler: router, Matches: matches, Hub: hub}
}
