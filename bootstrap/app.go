package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"paygap/api"
	"paygap/cache"
	"paygap/config"
	"paygap/service"
	"paygap/storage"
)

// App holds the wired application components
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	SQLite              *storage.SQLite
	Reports             *storage.SQLiteReportStorage
	Announcements       *storage.SQLiteAnnouncementStorage
	AdminUsers          *storage.SQLiteAdminUserStorage
	AnnouncementCache   *cache.AnnouncementCache
	ReportService       *service.ReportService
	AnnouncementService *service.AnnouncementService
	APIServer           *api.API

	serviceWg  sync.WaitGroup
	shutdownCh chan struct{}
}

// NewApp loads configuration and wires every component
func NewApp(ctx context.Context) (*App, error) {
	app := &App{
		shutdownCh: make(chan struct{}),
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = logger.Sugar()

	app.Sugar.Info("paygap starting...")

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	sqlite, err := storage.NewSQLite(cfg.Database.SQLitePath, app.Sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.SQLite = sqlite

	runner, err := storage.NewMigrationRunner(sqlite.WriteDB, app.Sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}
	storage.RegisterMigrations(runner)
	if err := runner.Run(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app.Reports = storage.NewSQLiteReportStorage(sqlite, app.Sugar)
	app.Announcements = storage.NewSQLiteAnnouncementStorage(sqlite, app.Sugar)
	app.AdminUsers = storage.NewSQLiteAdminUserStorage(sqlite, app.Sugar)

	if cfg.Redis.Enabled {
		app.AnnouncementCache = cache.NewAnnouncementCache(
			cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize,
			cfg.Redis.CacheTTL, app.Sugar)
		if err := app.AnnouncementCache.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Sugar.Infow("Announcement cache enabled", "addr", cfg.Redis.Addr)
	}

	app.ReportService, err = service.NewReportService(app.Reports, app.AdminUsers, app.Sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report service: %w", err)
	}
	app.AnnouncementService = service.NewAnnouncementService(
		app.Announcements, app.AnnouncementCache, app.Sugar)

	app.APIServer = api.NewAPI(app.ReportService, app.AnnouncementService,
		app.AdminUsers, cfg, app.Sugar)

	return app, nil
}

// Start launches the API server and the announcement expiry sweep
func (a *App) Start() error {
	a.startExpirySweep()

	addr := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	a.serviceWg.Add(1)
	go func() {
		defer a.serviceWg.Done()
		a.Sugar.Infow("API server listening", "addr", addr, "tls", a.Config.Server.TLS)
		var err error
		if a.Config.Server.TLS {
			err = a.APIServer.StartTLS(addr, a.Config.Server.CertFile, a.Config.Server.KeyFile)
		} else {
			err = a.APIServer.Start(addr)
		}
		if err != nil && err.Error() != "http: Server closed" {
			a.Sugar.Errorw("API server stopped", "error", err)
		}
	}()
	return nil
}

// startExpirySweep runs the announcement expiry sweep on its interval
// until shutdown
func (a *App) startExpirySweep() {
	interval := a.Config.Announcements.ExpirySweepInterval
	a.serviceWg.Add(1)
	go func() {
		defer a.serviceWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if _, err := a.AnnouncementService.ExpireAnnouncements(ctx, time.Now().UTC()); err != nil {
					a.Sugar.Errorw("Announcement expiry sweep failed", "error", err)
				}
				cancel()
			case <-a.shutdownCh:
				return
			}
		}
	}()
}

// WaitForShutdown blocks until a shutdown signal is received
func (a *App) WaitForShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// Shutdown stops the background sweep, the API server, and the stores
func (a *App) Shutdown() {
	a.Sugar.Info("Shutting down...")
	close(a.shutdownCh)

	if a.APIServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.APIServer.Stop(ctx); err != nil {
			a.Sugar.Errorw("Failed to stop API server", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		a.serviceWg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		a.Sugar.Warn("Timed out waiting for service goroutines")
	}

	if a.AnnouncementCache != nil {
		if err := a.AnnouncementCache.Close(); err != nil {
			a.Sugar.Errorw("Failed to close redis client", "error", err)
		}
	}
	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			a.Sugar.Errorw("Failed to close database", "error", err)
		}
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}
