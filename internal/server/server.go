package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/careerlens/apiserver/config"
	"github.com/careerlens/apiserver/internal/ai"
	"github.com/careerlens/apiserver/internal/auth"
	"github.com/careerlens/apiserver/internal/db"
	"github.com/careerlens/apiserver/internal/mq"
	"github.com/careerlens/apiserver/internal/storage"
	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/internal/worker"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

// Server wraps the HTTP server and the connections it owns.
type Server struct {
	httpServer *http.Server
	app        *App
	db         *sql.DB
	bus        *mq.MQ
	objects    *storage.Storage
	worker     *worker.Worker
	logger     *logrus.Logger
}

// New opens the database and the optional subsystems selected by cfg and
// builds the router. The caller must call Shutdown.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	s := &Server{db: dbConn, logger: logger}

	s.bus, err = mq.Open(ctx, cfg.MQ)
	if err != nil {
		s.close()
		return nil, err
	}
	s.objects, err = storage.Open(ctx, cfg.Storage)
	if err != nil {
		s.close()
		return nil, err
	}

	deps := Dependencies{
		Users:          store.NewUserRepository(dbConn),
		Jobs:           store.NewJobRepository(dbConn),
		Applications:   store.NewApplicationRepository(dbConn),
		Matches:        store.NewMatchRepository(dbConn),
		Tokens:         auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Bus:            s.bus,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DB:             dbConn,
		Logger:         logger,
	}
	if s.objects != nil {
		deps.Objects = s.objects
	}

	scorer, err := ai.NewScorer(ctx, cfg.AI)
	switch {
	case err == nil:
		deps.Scorer = scorer
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Info("no AI provider configured, fit scoring disabled in this process")
	default:
		s.close()
		return nil, err
	}

	// The memory bus only reaches a worker running in this process, which
	// needs a scorer of its own.
	inProcess := cfg.MQ.Backend == config.MQBackendMemory
	deps.QueueMatches = s.bus != nil && (!inProcess || deps.Scorer != nil)

	s.app = NewApp(deps)
	if inProcess {
		s.worker = worker.New(s.bus, s.app.Matches, logger)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           s.app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      70 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases every connection.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.close()
	return err
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if s.worker != nil {
		go func() {
			if err := s.worker.Run(workerCtx); err != nil {
				s.logger.WithError(err).Error("in-process worker stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	stopWorker()
	return s.Shutdown(shutdownCtx)
}

func (s *Server) close() {
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			s.logger.WithError(err).Warn("close message bus")
		}
	}
	if s.objects != nil {
		if err := s.objects.Close(); err != nil {
			s.logger.WithError(err).Warn("close object storage")
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
