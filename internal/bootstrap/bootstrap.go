// Package bootstrap wires configuration into a running analysis service.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	appai "github.com/bryanwahyu/deepscan/internal/application/ai"
	"github.com/bryanwahyu/deepscan/internal/application/analysis"
	"github.com/bryanwahyu/deepscan/internal/config"
	"github.com/bryanwahyu/deepscan/internal/domain/ai"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/backends"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/generator"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/prompt"
	mysqlp "github.com/bryanwahyu/deepscan/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/deepscan/internal/infra/db/postgres"
	"github.com/bryanwahyu/deepscan/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/deepscan/internal/infra/storage"
	"github.com/bryanwahyu/deepscan/internal/middleware"
)

// App holds the wired components. Close releases the database handle.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Orchestrator *analysis.Orchestrator
	Service      *appai.Service

	db *sql.DB
}

// Options let callers replace the configured backend, e.g. in tests.
type Options struct {
	Backend ai.Backend
	// NoArchive skips database and object storage even when configured.
	NoArchive bool
}

func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	backend := opts.Backend
	if backend == nil {
		b, err := backends.New(ctx, cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("ai backend: %w", err)
		}
		backend = b
	}

	prompts := prompt.Default()
	if cfg.AI.PromptsDir != "" {
		p, err := prompt.Load(cfg.AI.PromptsDir)
		if err != nil {
			return nil, fmt.Errorf("prompts: %w", err)
		}
		prompts = p
	}

	gen := generator.New(backend, generator.WithTimeout(cfg.AI.Timeout), generator.WithLogger(logger))
	orch := analysis.NewOrchestrator(analysis.NewProducers(gen, prompts), logger)
	svc := appai.NewService(orch, logger)
	svc.Metrics = middleware.AnalysisRecorder{}

	app := &App{Config: cfg, Logger: logger, Orchestrator: orch, Service: svc}
	if opts.NoArchive {
		return app, nil
	}
	if err := app.wireArchive(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wireArchive(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Storage.Driver {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		a.db = db
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			return err
		}
		a.Service.Repo = mysqlp.NewAnalystRepository(db)
		a.Service.Failures = mysqlp.NewFailureRepository(db)
	case config.DriverPostgres:
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		a.db = db
		if err := pgp.EnsureSchema(ctx, db); err != nil {
			return err
		}
		a.Service.Repo = pgp.NewAnalystRepository(db)
		a.Service.Failures = pgp.NewFailureRepository(db)
	}

	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx, minioStore.Options{
			Endpoint:   cfg.Minio.Endpoint,
			Region:     cfg.Minio.Region,
			BucketName: cfg.Minio.BucketName,
			AccessKey:  cfg.Minio.AccessKey,
			SecretKey:  cfg.Minio.SecretKey,
			UseSSL:     cfg.Minio.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		a.Service.Artifacts = store
	}
	return nil
}

// Handler builds the HTTP router. The rate limiter lives until ctx is done.
func (a *App) Handler(ctx context.Context) http.Handler {
	checkers := map[string]middleware.HealthChecker{}
	if a.db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: a.db}
	}
	var limiter *middleware.RateLimiter
	if a.Config.Server.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(ctx, a.Config.Server.RateLimit)
	}
	return httpserver.NewRouter(a.Service, httpserver.Options{
		Logger:         a.Logger,
		APIKeys:        a.Config.Server.APIKeys,
		CORSOrigins:    a.Config.Server.CORSOrigins,
		RateLimiter:    limiter,
		MaxCodeSize:    a.Config.Server.MaxCodeSize,
		HealthCheckers: checkers,
	})
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", a.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.Handler(ctx),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.HTTPWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", zap.String("addr", addr), zap.String("backend", a.Orchestrator.Backend()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
