package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "usergate/internal/jwt_token"
	"usergate/internal/platform/config"
	"usergate/internal/platform/httpserver"
	"usergate/internal/platform/metrics"
	rlmetrics "usergate/internal/ratelimit/metrics"
	rlmiddleware "usergate/internal/ratelimit/middleware"
	"usergate/internal/ratelimit/models"
	rlservice "usergate/internal/ratelimit/service"
	"usergate/internal/ratelimit/store/window"
	httptransport "usergate/internal/transport/http"
	"usergate/internal/users/handler"
	"usergate/internal/users/secrets"
	"usergate/internal/users/service"
	"usergate/internal/users/store"
	"usergate/internal/validation"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/httputil"
	"usergate/pkg/platform/middleware/auth"
	"usergate/pkg/platform/middleware/headers"
	"usergate/pkg/platform/middleware/jsonbody"
	"usergate/pkg/platform/middleware/logging"
	"usergate/pkg/platform/middleware/maintenance"
	"usergate/pkg/platform/middleware/requestid"
	"usergate/pkg/platform/middleware/version"
	"usergate/pkg/platform/pipeline"
)

// app is the fully wired process: the public API, the ops endpoints and the
// rate limit sweeper.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	users   *service.Service
	windows *window.InMemoryStore
	api     http.Handler
	ops     http.Handler
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	apiMetrics := metrics.New(registry)
	limitMetrics := rlmetrics.New(registry)

	userStore, db, err := openUserStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience,
		jwttoken.WithTTL(cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
	)
	users, err := service.New(userStore, secrets.NewHasher(cfg.Auth.BcryptCost), tokens,
		service.WithLogger(logger),
		service.WithObserver(apiMetrics),
	)
	if err != nil {
		return nil, closeOnError(db, err)
	}

	windows := window.NewInMemoryStore(window.WithObserver(limitMetrics))
	limiter, err := rlservice.New(windows,
		rlservice.WithLogger(logger),
		rlservice.WithPolicies(ratePolicies(cfg.RateLimit)...),
		rlservice.WithObserver(limitMetrics),
	)
	if err != nil {
		return nil, closeOnError(db, err)
	}

	authn := auth.NewAuthenticator(tokens, users, logger)
	engine, err := pipeline.New(logger, []pipeline.Interceptor{
		requestid.New(),
		logging.New(logger, logging.WithObserver(apiMetrics)),
		headers.NewSecurity(),
		headers.NewCORS(headers.DefaultCORSConfig()),
		version.New(),
		jsonbody.New(),
		maintenance.New(cfg.Server.MaintenanceMode, authn, logger),
		rlmiddleware.New(limiter, logger, rlmiddleware.WithDisabled(cfg.RateLimit.Disabled)),
		auth.NewGate(authn),
	},
		pipeline.WithTranslator(pipeline.NewTranslator(logger, apiMetrics)),
		pipeline.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
	)
	if err != nil {
		return nil, closeOnError(db, err)
	}

	router := httptransport.NewRouter(engine)
	handler.New(users, validation.New(nil), logger).Register(router)

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		users:   users,
		windows: windows,
		api:     router,
		ops:     opsRouter(cfg.Metrics, registry, db),
	}, nil
}

// run serves until ctx is cancelled or one of the components fails.
func (a *app) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		srv := httpserver.New(a.cfg.Server.Addr, a.api, a.cfg.Server.ReadHeaderTimeout)
		return httpserver.Run(ctx, srv, a.cfg.Server.ShutdownTimeout, a.logger)
	})
	if a.cfg.Server.OpsAddr != "" {
		g.Go(func() error {
			srv := httpserver.New(a.cfg.Server.OpsAddr, a.ops, a.cfg.Server.ReadHeaderTimeout)
			return httpserver.Run(ctx, srv, a.cfg.Server.ShutdownTimeout, a.logger)
		})
	}
	g.Go(func() error {
		return a.windows.Run(ctx, a.cfg.RateLimit.SweepInterval)
	})

	return g.Wait()
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// openUserStore returns the Postgres store when a database URL is set and the
// in-memory store otherwise. db is nil for the latter.
func openUserStore(ctx context.Context, cfg config.Database, logger *slog.Logger) (service.Store, *sql.DB, error) {
	if cfg.URL == "" {
		logger.Warn("no database configured, users are kept in memory")
		return store.NewInMemory(), nil, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx, db, logger); err != nil {
			return nil, nil, closeOnError(db, err)
		}
	}
	return store.NewPostgres(db), db, nil
}

func openDB(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, closeOnError(db, fmt.Errorf("ping database: %w", err))
	}
	return db, nil
}

func closeOnError(db *sql.DB, err error) error {
	if db != nil {
		return errors.Join(err, db.Close())
	}
	return err
}

func ratePolicies(cfg config.RateLimit) []models.Policy {
	limits := cfg.ScopePolicies()
	policies := make([]models.Policy, 0, len(limits))
	for scope, l := range limits {
		policies = append(policies, models.Policy{Scope: models.Scope(scope), Limit: l.Limit, Window: l.Window})
	}
	return policies
}

// opsRouter serves health and metrics on the internal listener.
func opsRouter(cfg config.Metrics, registry *prometheus.Registry, db *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				httputil.WriteError(w, dErrors.ExternalService(err))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Enabled {
		r.Handle(cfg.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.NotFound("", ""))
	})
	return r
}
