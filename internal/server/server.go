// Package server is the composition root: it opens the database, builds the
// store, services and handlers, and maps them onto routes.
//
// DEPENDENCY FLOW:
//
//	config.Config → database.DB → database.Executor → sqlstore.Store
//	  → service.*Service → handler.*Handler → chi routes
//
// Each layer only receives what it needs. Services see repository
// interfaces, not the store; handlers see services, not the database.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/config"
	"github.com/sakif/conduit/internal/database"
	"github.com/sakif/conduit/internal/handler"
	"github.com/sakif/conduit/internal/middleware"
	"github.com/sakif/conduit/internal/repository/sqlstore"
	"github.com/sakif/conduit/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown: the database pool and the rate limiter's sweep goroutine.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *database.DB
	limiter *middleware.RateLimiter
}

// New opens the database, migrates it when configured to, and wires every
// route. The caller owns the Server and must call Close (Start does so on
// its way out).
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := database.Open(ctx, cfg.DatabaseOptions())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		limiter: middleware.NewRateLimiter(cfg.RateLimit.LoginPerSecond, cfg.RateLimit.LoginBurst),
	}

	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes configures middleware and every route.
//
// ROUTES:
//
//	GET    /healthz                               liveness + database ping
//	GET    /metrics                               Prometheus scrape endpoint
//	POST   /api/users                             register          (rate limited)
//	POST   /api/users/login                       login             (rate limited)
//	GET    /api/user                              current user      (auth)
//	PUT    /api/user                              update user       (auth)
//	GET    /api/profiles/{username}               profile           (optional auth)
//	POST   /api/profiles/{username}/follow        follow            (auth)
//	DELETE /api/profiles/{username}/follow        unfollow          (auth)
//	GET    /api/articles                          list              (optional auth)
//	GET    /api/articles/feed                     feed              (auth)
//	POST   /api/articles                          create            (auth)
//	GET    /api/articles/{slug}                   get               (optional auth)
//	PUT    /api/articles/{slug}                   update            (auth, author)
//	DELETE /api/articles/{slug}                   delete            (auth, author)
//	POST   /api/articles/{slug}/favorite          favorite          (auth)
//	DELETE /api/articles/{slug}/favorite          unfavorite        (auth)
//	GET    /api/articles/{slug}/comments          list comments     (optional auth)
//	POST   /api/articles/{slug}/comments          add comment       (auth)
//	DELETE /api/articles/{slug}/comments/{id}     delete comment    (auth, author)
//	GET    /api/tags                              tags
//
// Middleware runs in the order it is added.
func (s *Server) setupRoutes() error {
	cfg := s.config

	tokens, err := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	passwords, err := auth.NewPasswordService(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	store := sqlstore.New(database.NewExecutor(s.db, s.logger))

	users := handler.NewUserHandler(service.NewUserService(store, tokens, passwords, cfg.Auth.TokenTTL, s.logger))
	profiles := handler.NewProfileHandler(service.NewProfileService(store, store, s.logger))
	articles := handler.NewArticleHandler(service.NewArticleService(store, s.logger))
	comments := handler.NewCommentHandler(service.NewCommentService(store, s.logger))
	tags := handler.NewTagHandler(service.NewTagService(store))
	health := handler.NewHealthHandler(s.db)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)

	r.Get("/healthz", health.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Limit("auth"))
			r.Post("/users", users.HandleRegister)
			r.Post("/users/login", users.HandleLogin)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", users.HandleCurrent)
			r.Put("/", users.HandleUpdate)
		})

		r.Route("/profiles/{username}", func(r chi.Router) {
			r.With(optionalAuth).Get("/", profiles.HandleGet)
			r.With(requireAuth).Post("/follow", profiles.HandleFollow)
			r.With(requireAuth).Delete("/follow", profiles.HandleUnfollow)
		})

		r.Route("/articles", func(r chi.Router) {
			r.With(optionalAuth).Get("/", articles.HandleList)
			r.With(requireAuth).Post("/", articles.HandleCreate)
			// Registered before {slug} for readability; chi matches the
			// static segment first either way.
			r.With(requireAuth).Get("/feed", articles.HandleFeed)

			r.Route("/{slug}", func(r chi.Router) {
				r.With(optionalAuth).Get("/", articles.HandleGet)
				r.With(requireAuth).Put("/", articles.HandleUpdate)
				r.With(requireAuth).Delete("/", articles.HandleDelete)

				r.With(requireAuth).Post("/favorite", articles.HandleFavorite)
				r.With(requireAuth).Delete("/favorite", articles.HandleUnfavorite)

				r.With(optionalAuth).Get("/comments", comments.HandleList)
				r.With(requireAuth).Post("/comments", comments.HandleAdd)
				r.With(requireAuth).Delete("/comments/{id}", comments.HandleDelete)
			})
		})

		r.Get("/tags", tags.HandleList)
	})

	return nil
}

// Router exposes the route tree, for documentation generation.
func (s *Server) Router() chi.Router {
	return s.router
}

// Handler returns the fully wired HTTP handler. Tests serve it through
// httptest without opening a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the rate limiter and the database pool.
func (s *Server) Close() error {
	s.limiter.Close()
	return s.db.Close()
}

// Start serves HTTP until SIGINT/SIGTERM, then shuts down gracefully:
//  1. stop accepting connections
//  2. wait up to ShutdownTimeout for in-flight requests
//  3. close the database pool
func (s *Server) Start() error {
	defer s.Close()

	sc := s.config.Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", sc.Port),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", sc.Port),
			slog.String("driver", s.db.Dialect().String()),
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

		ctx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
