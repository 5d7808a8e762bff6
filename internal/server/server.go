// Package server is the composition root: it builds every dependency from
// configuration, wires handlers to routes and runs the HTTP server.
//
// DEPENDENCY FLOW:
//
//	config.Config
//	  ├─ repository.Store (postgres or sqlite) → ConversionService, IdentityService
//	  ├─ llm.Completer                        → convert.Converter
//	  ├─ auth.Verifier                        → auth.RequireAuth
//	  ├─ billing.SessionCreator               → CheckoutService
//	  ├─ ratelimit.Limiter                    → middleware.RateLimit on /convert
//	  └─ billing.Catalog                      → PlansHandler
//
// Anything passed in Deps is used as-is and stays owned by the caller.
// Anything the server builds itself is closed by Close.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/prompt2json/internal/auth"
	"github.com/sakif/prompt2json/internal/billing"
	"github.com/sakif/prompt2json/internal/config"
	"github.com/sakif/prompt2json/internal/convert"
	"github.com/sakif/prompt2json/internal/handler"
	"github.com/sakif/prompt2json/internal/llm"
	"github.com/sakif/prompt2json/internal/middleware"
	"github.com/sakif/prompt2json/internal/ratelimit"
	"github.com/sakif/prompt2json/internal/repository"
	"github.com/sakif/prompt2json/internal/repository/postgres"
	sqliteRepo "github.com/sakif/prompt2json/internal/repository/sqlite"
	"github.com/sakif/prompt2json/internal/service"
)

// Deps overrides pieces the server would otherwise build from config.
// Tests use it to inject fakes.
type Deps struct {
	Store     repository.Store
	Completer llm.Completer
	Verifier  auth.Verifier
	Sessions  billing.SessionCreator
	Limiter   ratelimit.Limiter
	Catalog   *billing.Catalog
}

type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger

	readiness []handler.HealthCheck
	closers   []io.Closer // closed in reverse order
}

// New builds every missing dependency and the route table. On error,
// whatever was already opened is closed again.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, deps Deps) (_ *Server, err error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	if deps.Store == nil {
		if deps.Store, err = s.openStore(ctx); err != nil {
			return nil, err
		}
		s.closers = append(s.closers, deps.Store)
	}
	s.readiness = append(s.readiness, handler.HealthCheck{Name: "database", Checker: deps.Store})

	if deps.Completer == nil {
		if deps.Completer, err = llm.New(ctx, cfg.LLM()); err != nil {
			return nil, fmt.Errorf("creating AI client: %w", err)
		}
		if _, ok := deps.Completer.(llm.Unconfigured); ok {
			logger.Warn("no AI API key configured, every conversion will use the fallback structure",
				slog.String("provider", cfg.AIProvider))
		}
	}

	if deps.Verifier == nil {
		if deps.Verifier, err = s.newVerifier(); err != nil {
			return nil, err
		}
	}

	if deps.Sessions == nil {
		deps.Sessions = s.newSessionCreator()
	}

	if deps.Limiter == nil && cfg.RateLimitConvertEnabled {
		if deps.Limiter, err = s.newLimiter(ctx); err != nil {
			return nil, err
		}
	}

	if deps.Catalog == nil {
		if deps.Catalog, err = billing.LoadCatalog(cfg.PlansFile); err != nil {
			return nil, fmt.Errorf("loading plan catalog: %w", err)
		}
	}
	for _, issue := range deps.Catalog.DuplicatePriceRefs() {
		logger.Warn("plan billing cycles share one price reference",
			slog.String("plan_id", issue.PlanID),
			slog.String("price_ref", issue.PriceRef),
			slog.Int("cycles", len(issue.Cycles)),
		)
	}

	s.setupRoutes(deps)
	return s, nil
}

// openStore picks Postgres when DATABASE_URL is set and SQLite otherwise.
func (s *Server) openStore(ctx context.Context) (repository.Store, error) {
	if s.config.DatabaseURL != "" {
		db, err := postgres.New(ctx, s.config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		s.logger.Info("using postgres storage")
		return db, nil
	}

	if s.config.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.config.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(s.config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	s.logger.Info("using sqlite storage", slog.String("path", s.config.DBPath))
	return db, nil
}

// newVerifier prefers local JWT verification, then the provider's user
// endpoint, and rejects everything when neither is configured.
func (s *Server) newVerifier() (auth.Verifier, error) {
	switch {
	case s.config.SupabaseJWTSecret != "":
		v, err := auth.NewTokenService(s.config.SupabaseJWTSecret, s.config.SupabaseJWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("creating token verifier: %w", err)
		}
		return v, nil
	case s.config.SupabaseURL != "":
		return auth.NewRemoteVerifier(s.config.SupabaseURL, s.config.SupabaseAnonKey, nil, s.config.AuthTimeout), nil
	default:
		s.logger.Warn("no identity provider configured, protected routes will answer 401")
		return auth.RejectAll{}, nil
	}
}

func (s *Server) newSessionCreator() billing.SessionCreator {
	sc, err := billing.NewStripeSessionCreator(s.config.StripeSecretKey, nil)
	if err != nil {
		s.logger.Warn("stripe not configured, checkout will fail", slog.String("error", err.Error()))
		return billing.Unconfigured{}
	}
	return sc
}

func (s *Server) newLimiter(ctx context.Context) (ratelimit.Limiter, error) {
	policy := s.config.ConvertRateLimit()
	if s.config.RedisURL == "" {
		return ratelimit.NewMemoryLimiter(policy), nil
	}

	client, err := ratelimit.Connect(ctx, s.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	limiter := ratelimit.NewRedisLimiter(client, "convert", policy, s.logger)
	s.closers = append(s.closers, limiter)
	s.readiness = append(s.readiness, handler.HealthCheck{Name: "redis", Checker: limiter})
	return limiter, nil
}

// setupRoutes mounts the API twice: at the root and under /api, where the
// web client's older paths also live.
//
//	POST   /convert                      public, rate limited
//	GET    /version                      public
//	GET    /plans                        public
//	GET    /conversions                  auth
//	POST   /conversions                  auth
//	DELETE /conversions/{id}             auth
//	POST   /checkout-session             auth
//	GET    /api/versions                 alias of /version
//	POST   /api/stripe/create-checkout-session   alias of /checkout-session
func (s *Server) setupRoutes(deps Deps) {
	users := service.NewIdentityService(deps.Store, s.logger)
	conversions := handler.NewConversionHandler(service.NewConversionService(deps.Store, s.logger), s.logger)
	checkout := handler.NewCheckoutHandler(service.NewCheckoutService(deps.Sessions, s.config.AppURL, s.logger), s.logger)
	converter := handler.NewConvertHandler(convert.NewConverter(deps.Completer, s.logger), s.logger)
	plans := handler.NewPlansHandler(deps.Catalog)
	health := handler.NewHealthHandler(s.readiness...)

	requireAuth := auth.RequireAuth(deps.Verifier, users, s.logger)

	convertMiddleware := chi.Middlewares{}
	if deps.Limiter != nil {
		convertMiddleware = append(convertMiddleware, middleware.RateLimit(deps.Limiter, s.logger))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = s.config.GetCORSAllowedOrigins()

	r := s.router
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recoverer(s.logger))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.NoStore)
	r.Use(middleware.MaxBodySize(s.config.MaxRequestBodySize))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	api := func(r chi.Router) {
		r.With(convertMiddleware...).Post("/convert", converter.HandleConvert)
		r.Get("/version", handler.HandleVersion)
		r.Get("/plans", plans.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/conversions", conversions.HandleList)
			r.Post("/conversions", conversions.HandleCreate)
			r.Delete("/conversions/{id}", conversions.HandleDelete)
			r.Post("/checkout-session", checkout.HandleCreateSession)
		})
	}

	api(r)
	r.Route("/api", func(r chi.Router) {
		api(r)
		r.Get("/versions", handler.HandleVersion)
		r.With(requireAuth).Post("/stripe/create-checkout-session", checkout.HandleCreateSession)
	})
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled or the listener fails. In-flight
// requests get ShutdownTimeout to finish; owned resources are closed after.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing resources", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// Close releases everything New opened. It is safe to call more than once.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
