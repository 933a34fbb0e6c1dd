// Package server wires the dependency chain — database, repositories,
// services, handlers — and owns the HTTP listener's lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/habit-tracker/internal/auth"
	"github.com/sakif/habit-tracker/internal/handler"
	"github.com/sakif/habit-tracker/internal/middleware"
	"github.com/sakif/habit-tracker/internal/repository/sqlite"
	"github.com/sakif/habit-tracker/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret signs session tokens. Required; the app has no
	// unauthenticated mode.
	JWTSecret string

	// GitHub OAuth app credentials. Optional: when unset, the GitHub login
	// routes are simply not mounted and email/password remains the only way
	// in.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server is the assembled application.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqlite.DB
}

// New opens the database, builds the dependency chain, and mounts all
// routes. The returned server owns the database handle and closes it when
// Start returns.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens)
	return s, nil
}

// Handler exposes the router for httptest-driven tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database handle. Start does this itself; Close exists
// for callers that use Handler without ever calling Start.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Repositories over the shared connection.
	habits := sqlite.NewHabitRepo(s.db)
	completions := sqlite.NewCompletionRepo(s.db)
	users := sqlite.NewUserRepo(s.db)
	moods := sqlite.NewMoodRepo(s.db)

	// Services.
	authSvc := service.NewAuthService(users, auth.NewPasswordService(), tokens, s.logger)
	habitSvc := service.NewHabitService(habits, completions, s.logger)
	trackerSvc := service.NewTrackerService(habits, completions, s.logger)
	statsSvc := service.NewStatsService(habits, completions, s.logger)
	profileSvc := service.NewProfileService(users, habits, completions, moods, s.logger)
	moodSvc := service.NewMoodService(moods, s.logger)

	// Handlers.
	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}
	authHandler := handler.NewAuthHandler(authSvc, github, s.logger)
	habitHandler := handler.NewHabitHandler(habitSvc)
	trackerHandler := handler.NewTrackerHandler(trackerSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	moodHandler := handler.NewMoodHandler(moodSvc)

	// Public routes.
	s.router.Get("/api/health", handler.HandleHealth)
	s.router.Post("/api/auth/register", authHandler.HandleRegister)
	s.router.Post("/api/auth/login", authHandler.HandleLogin)
	s.router.Post("/api/auth/logout", authHandler.HandleLogout)
	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	} else {
		s.logger.Warn("GitHub OAuth not configured — GitHub login routes disabled")
	}

	// Everything else needs a valid session.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/api/me", authHandler.HandleMe)

		r.Get("/api/user/habits", habitHandler.HandleList)
		r.Post("/api/habits", habitHandler.HandleCreate)
		r.Put("/api/habits/{id}", habitHandler.HandleUpdate)
		r.Delete("/api/habits/{id}", habitHandler.HandleDelete)

		r.Post("/api/habits/{id}/complete", trackerHandler.HandleComplete)
		r.Post("/api/habits/{id}/uncomplete", trackerHandler.HandleUncomplete)
		r.Get("/api/habits/{id}/history", trackerHandler.HandleHistory)
		r.Get("/api/user/habits/completions", trackerHandler.HandleCompletionsForDate)

		r.Get("/api/user/stats", statsHandler.HandleUserStats)
		r.Get("/api/user/stats/trend", statsHandler.HandleTrend)

		r.Post("/api/user/mood", moodHandler.HandleSave)
		r.Get("/api/user/mood", moodHandler.HandleGet)
		r.Get("/api/user/mood/history", moodHandler.HandleHistory)

		r.Get("/api/user/profile", profileHandler.HandleGet)
		r.Put("/api/user/profile", profileHandler.HandleUpdate)
		r.Delete("/api/user/delete", profileHandler.HandleDeleteAccount)
	})
}

// Start runs the HTTP listener until a fatal error or a shutdown signal,
// then drains in-flight requests before returning.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
