package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/callwise/flow-version-service/internal/dao"
	"github.com/callwise/flow-version-service/internal/domain"
	"github.com/callwise/flow-version-service/internal/dto"
	"github.com/callwise/flow-version-service/internal/service"
	pkgapp "github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/convert"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the application container. It owns the storage handle and wires
// repositories and services by constructor injection.
type App struct {
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// repository layer
	FlowRepo    domain.FlowRepository
	VersionRepo domain.FlowVersionRepository

	// service layer
	VersionService  service.VersionService
	RollbackService service.RollbackService
	ArchiveService  service.ArchiveService

	TokenManager *pkgapp.TokenManager
	StartTime    time.Time

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewApp creates the application container, wiring every layer.
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	a.Dao = dao.New(db, logger)
	a.TokenManager = pkgapp.NewTokenManager(cfg.Security.AuthTokenKey)

	a.FlowRepo = dao.NewFlowRepository(a.Dao)
	a.VersionRepo = dao.NewFlowVersionRepository(a.Dao)

	a.VersionService = service.NewVersionService(a.VersionRepo, a.FlowRepo, logger)
	a.RollbackService = service.NewRollbackService(a.VersionRepo, a.VersionService, logger)
	a.ArchiveService = service.NewArchiveService(a.VersionRepo, a.FlowRepo, logger)

	logger.Info("app container initialized",
		zap.String("database", cfg.Database.Type),
		zap.Bool("archiveSweep", cfg.Archive.Enabled))
	return a, nil
}

// Config returns the application configuration.
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger returns the zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// PaginationConfig returns the configured page size bounds.
func (a *App) PaginationConfig() pkgapp.PaginationConfig {
	return pkgapp.PaginationConfig{
		DefaultPageSize: a.config.App.DefaultPageSize,
		MaxPageSize:     a.config.App.MaxPageSize,
	}
}

// DefaultArchivePolicy returns the policy used by the scheduled sweep.
func (a *App) DefaultArchivePolicy() dto.ArchivePolicyDTO {
	policy := dto.ArchivePolicyDTO{}
	convert.StructAssign(a.config.Archive, &policy)
	return policy
}

// Version returns build version information.
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// TrackOperation registers a background operation awaited during shutdown.
// The returned function must be called when the operation finishes.
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() { a.wg.Done() }
}

// ShutdownCh closes when shutdown begins.
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// IsShuttingDown reports whether shutdown has started.
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// Close releases the database connection.
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
		a.logger.Info("database connection closed")
	}
	return nil
}

// DefaultShutdownTimeout bounds graceful shutdown when no context is given.
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown waits for background operations and closes held resources.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("app container shutting down")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	a.shutdownOnce.Do(func() { close(a.shutdownCh) })

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("shutdown timeout waiting for background operations")
	}

	return a.Close()
}
