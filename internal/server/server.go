// Package server is the composition root: it wires the store, services,
// handlers and middleware into a chi router and owns the server
// lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/tahsin/project-nourish/internal/access"
	"github.com/tahsin/project-nourish/internal/auth"
	"github.com/tahsin/project-nourish/internal/handler"
	"github.com/tahsin/project-nourish/internal/metrics"
	"github.com/tahsin/project-nourish/internal/middleware"
	"github.com/tahsin/project-nourish/internal/model"
	sqliteRepo "github.com/tahsin/project-nourish/internal/repository/sqlite"
	"github.com/tahsin/project-nourish/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port               int
	DBPath             string
	TemplateDir        string
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	RoleSeedPath       string // optional; empty skips seeding
}

// Server owns the router, the database and the background pieces that
// need explicit teardown.
type Server struct {
	router    *chi.Mux
	config    Config
	logger    *slog.Logger
	db        *sqliteRepo.DB
	broker    *access.Broker
	limiter   *middleware.RateLimiter
	collector *metrics.Collector
}

// routeTable declares the access requirements for the mounted routes in
// one place; the guard middleware consumes it uniformly. Wildcards cover
// the parametrized children of each subtree.
func routeTable() access.Table {
	return access.Table{
		{Path: "/api/me", Authenticated: true},
		{Path: "/api/certificates/*", Authenticated: true},
		{Path: "/api/certificates/self", Authenticated: true, RequiredRole: model.RoleDonor},
		{Path: "/api/donations", Authenticated: true, RequiredRole: model.RoleDonor},
		{Path: "/api/donor/*", Authenticated: true, RequiredRole: model.RoleDonor},
		{Path: "/api/admin/*", Authenticated: true, RequiredRole: model.RoleAdmin},
		{Path: "/api/donors/*", Authenticated: true, RequiredRole: model.RoleAdmin},
		{Path: "/api/food-items/*", Authenticated: true, RequiredRole: model.RoleAdmin},
		{Path: "/api/storage/*", Authenticated: true, RequiredRole: model.RoleAdmin},
		{Path: "/api/distribution-events/*", Authenticated: true, RequiredRole: model.RoleAdmin},
		{Path: "/api/distribution-details/*", Authenticated: true, RequiredRole: model.RoleAdmin},
	}
}

// New assembles the full dependency chain: store, broker, services,
// handlers, middleware, routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.RoleSeedPath != "" {
		if err := db.SeedFromFile(context.Background(), cfg.RoleSeedPath); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding accounts: %w", err)
		}
		logger.Info("account seed applied", slog.String("path", cfg.RoleSeedPath))
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		db:        db,
		broker:    access.NewBroker(),
		limiter:   middleware.NewRateLimiter(rate.Limit(10.0/60.0), 10),
		collector: metrics.NewCollector(),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		s.limiter.Stop()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	github := auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)

	roleService := service.NewRoleService(s.db, s.logger)
	authService := service.NewAuthService(s.db, roleService, passwords, tokens, s.broker, s.logger)
	certService := service.NewCertificateService(s.db, s.db, s.logger)
	donationService := service.NewDonationService(s.db, s.db, s.logger)
	dashboardService := service.NewDashboardService(s.db, s.db, s.db, s.logger)
	registryService := service.NewRegistryService(s.db, s.db, s.db, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, roleService, github, s.logger)
	certHandler, err := handler.NewCertificateHandler(certService, s.collector, s.config.TemplateDir, s.logger)
	if err != nil {
		return err
	}
	dashboardHandler := handler.NewDashboardHandler(dashboardService, donationService, s.logger)
	registryHandler := handler.NewRegistryHandler(registryService, s.logger)

	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.Logging(s.logger))
	s.router.Use(s.collector.Middleware)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	s.router.Method(http.MethodGet, "/metrics", s.collector.Handler())

	// Auth endpoints: public, but rate limited per IP against credential
	// stuffing.
	s.router.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.logger))
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		// Logout needs a session. RequireAuth answers anonymous callers
		// with a plain 401 instead of the guard's redirect.
		r.With(auth.RequireAuth(tokens)).Post("/auth/logout", authHandler.HandleLogout)
		r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	})

	// API endpoints: session extraction, then the route guard.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Use(middleware.Guard(routeTable(), roleService, s.collector, s.logger))

		r.Get("/me", authHandler.HandleMe)

		r.Get("/certificates", certHandler.HandleList)
		r.Post("/certificates", certHandler.HandleIssueAnnual)
		r.Post("/certificates/self", certHandler.HandleIssueSelf)
		r.Get("/certificates/{id}/print", certHandler.HandlePrint)

		r.Get("/donor/dashboard", dashboardHandler.HandleDonor)
		r.Post("/donations", dashboardHandler.HandleRecordDonation)

		r.Get("/admin/dashboard", dashboardHandler.HandleAdmin)

		r.Route("/donors", func(r chi.Router) {
			r.Get("/", registryHandler.HandleListDonors)
			r.Post("/", registryHandler.HandleCreateDonor)
			r.Get("/{id}", registryHandler.HandleGetDonor)
			r.Put("/{id}", registryHandler.HandleUpdateDonor)
			r.Delete("/{id}", registryHandler.HandleDeleteDonor)
		})
		r.Route("/food-items", func(r chi.Router) {
			r.Get("/", registryHandler.HandleListFoodItems)
			r.Post("/", registryHandler.HandleCreateFoodItem)
			r.Get("/{id}", registryHandler.HandleGetFoodItem)
			r.Put("/{id}", registryHandler.HandleUpdateFoodItem)
			r.Delete("/{id}", registryHandler.HandleDeleteFoodItem)
		})
		r.Route("/storage", func(r chi.Router) {
			r.Get("/", registryHandler.HandleListStorage)
			r.Post("/", registryHandler.HandleCreateStorage)
			r.Get("/{id}", registryHandler.HandleGetStorage)
			r.Put("/{id}", registryHandler.HandleUpdateStorage)
			r.Delete("/{id}", registryHandler.HandleDeleteStorage)
		})
		r.Route("/distribution-events", func(r chi.Router) {
			r.Get("/", registryHandler.HandleListDistributionEvents)
			r.Post("/", registryHandler.HandleCreateDistributionEvent)
			r.Get("/{id}", registryHandler.HandleGetDistributionEvent)
			r.Put("/{id}", registryHandler.HandleUpdateDistributionEvent)
			r.Delete("/{id}", registryHandler.HandleDeleteDistributionEvent)
		})
		r.Route("/distribution-details", func(r chi.Router) {
			r.Get("/", registryHandler.HandleListDistributionRecords)
			r.Post("/", registryHandler.HandleCreateDistributionDetail)
			r.Get("/{id}", registryHandler.HandleGetDistributionDetail)
			r.Put("/{id}", registryHandler.HandleUpdateDistributionDetail)
			r.Delete("/{id}", registryHandler.HandleDeleteDistributionDetail)
		})
	})

	// Audit subscriber: one log line per auth-state change, for the
	// lifetime of the process.
	events, cancel := s.broker.Subscribe(16)
	go func() {
		defer cancel()
		for ev := range events {
			s.logger.Info("auth state changed", slog.String("kind", string(ev.Kind)))
		}
	}()

	return nil
}

// Router exposes the assembled handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests,
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.limiter.Stop()

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
		if err != http.ErrServerClosed {
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
