// Package server wires configuration, storage, services and handlers into a
// chi router and runs the HTTP server.
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
	"github.com/go-chi/cors"

	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/config"
	"github.com/sakif/devconnector/internal/github"
	"github.com/sakif/devconnector/internal/handler"
	"github.com/sakif/devconnector/internal/middleware"
	sqliteRepo "github.com/sakif/devconnector/internal/repository/sqlite"
	"github.com/sakif/devconnector/internal/service"
)

// Server owns the database connection and the router built on top of it.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and builds the router. The caller must call Start
// (which closes the database on return) or Close.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(corsOptions(s.config.CORSOrigins)))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	requireAuth := auth.RequireAuth(tokens)

	authService := service.NewAuthService(s.db.Users(), tokens, auth.NewPasswordService(), s.logger)
	profileService := service.NewProfileService(s.db.Profiles(), s.db, s.logger)
	postService := service.NewPostService(s.db.Posts(), s.db.Users(), s.logger)

	// GitHub sign-in is optional; without client credentials its routes are
	// simply not registered.
	var signIn handler.GitHubSignIn
	if s.config.GitHubOAuthEnabled() {
		signIn = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	} else {
		s.logger.Warn("GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set, GitHub sign-in disabled")
	}
	repos := github.NewClient(s.config.GitHubAPIURL, s.config.GitHubClientID, s.config.GitHubClientSecret, nil, s.logger)

	authHandler := handler.NewAuthHandler(authService, signIn, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, repos, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/users", authHandler.HandleRegister)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.With(requireAuth).Get("/", authHandler.HandleMe)
			if signIn != nil {
				r.Get("/github/login", authHandler.HandleGitHubLogin)
				r.Get("/github/callback", authHandler.HandleGitHubCallback)
			}
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.HandleList)
			r.Get("/user/{user_id}", profileHandler.HandleGetByUser)
			r.Get("/github/{username}", profileHandler.HandleGitHubRepos)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", profileHandler.HandleMe)
				r.Post("/", profileHandler.HandleUpsert)
				r.Delete("/", profileHandler.HandleDelete)
				r.Put("/experience", profileHandler.HandleAddExperience)
				r.Delete("/experience/{exp_id}", profileHandler.HandleRemoveExperience)
				r.Put("/education", profileHandler.HandleAddEducation)
				r.Delete("/education/{edu_id}", profileHandler.HandleRemoveEducation)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", postHandler.HandleCreate)
			r.Get("/", postHandler.HandleList)
			r.Get("/{id}", postHandler.HandleGet)
			r.Delete("/{id}", postHandler.HandleDelete)
			r.Put("/like/{id}", postHandler.HandleLike)
			r.Post("/comment/{id}", postHandler.HandleComment)
			r.Delete("/comment/{id}/{comment_id}", postHandler.HandleDeleteComment)
		})
	})

	return nil
}

func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", auth.HeaderToken},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
	// Credentialed requests are not allowed with a wildcard origin.
	for _, o := range origins {
		if o == "*" {
			return opts
		}
	}
	opts.AllowCredentials = true
	return opts
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully and
// closes the database.
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
