// Package server wires the Lirra API: configuration, logging, Postgres with
// migrations, the services and the HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/lirra/internal/logging"
	"github.com/dmitrijs2005/lirra/internal/server/config"
	"github.com/dmitrijs2005/lirra/internal/server/httpapi"
	"github.com/dmitrijs2005/lirra/internal/server/removebg"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lirra/internal/server/services"
	"github.com/dmitrijs2005/lirra/internal/server/storage"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const readHeaderTimeout = 10 * time.Second

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	listen               = func(addr string) (net.Listener, error) {
		return net.Listen("tcp", addr)
	}
)

// sessionPurger is the part of UserService the background sweep needs.
type sessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	server   *http.Server
	sessions sessionPurger
}

// NewApp connects to the database, applies migrations and assembles the
// router. The caller owns the returned App and must call Run.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	logger.Info(ctx, "database migrations applied")

	objects := storage.NewS3Store(storage.Options{
		Region:       cfg.S3Region,
		AccessKey:    cfg.S3RootUser,
		SecretKey:    cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	remover := removebg.New(cfg.RemoveBgEndpoint, cfg.RemoveBgAPIKey, cfg.RequestTimeout)

	keys := services.NewCredentialKeyService(db, rm)
	accounts := services.NewUserService(db, rm, cfg)
	router := httpapi.NewRouter(httpapi.Options{
		SecretKey:   []byte(cfg.SecretKey),
		CORSOrigins: cfg.CORSAllowedOrigins,
		DB:          db,
		Logger:      logger.With("module", "http"),
	}, httpapi.Services{
		Accounts:      accounts,
		Subscriptions: services.NewSubscriptionService(db, rm),
		Keys:          keys,
		Payments:      services.NewPaymentService(db, rm, cfg),
		Stores:        services.NewStoreService(db, rm),
		Bookkeeping:   services.NewBookkeepingService(db, rm),
		Analytics:     services.NewAnalyticsService(db, rm),
		Admin:         services.NewAdminService(db, rm, keys, logger),
		Photos:        services.NewPhotoService(db, rm, objects, remover, logger),
		Labels:        services.NewLabelService(db, rm),
		Chat:          services.NewChatService(db, rm),
	})

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		sessions: accounts,
		server: &http.Server{
			Addr:              cfg.EndpointAddrHTTP,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      cfg.RequestTimeout + readHeaderTimeout,
		},
	}, nil
}

// Run serves until ctx is cancelled, then shuts the server down within
// ShutdownTimeout and closes the database.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	ln, err := listen(app.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.server.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(ctx, "http server started", "addr", ln.Addr().String())
		if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(ctx, "shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := app.server.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if app.config.SessionSweepInterval > 0 {
		g.Go(func() error {
			app.sweepSessions(gctx, app.config.SessionSweepInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	app.logger.Info(ctx, "server stopped")
	return nil
}

// sweepSessions purges expired refresh tokens every interval until ctx ends.
// Failures are logged and retried on the next tick.
func (app *App) sweepSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := app.sessions.PurgeExpiredSessions(ctx)
			if err != nil {
				app.logger.Warn(ctx, "session sweep failed", "err", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired sessions purged", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
