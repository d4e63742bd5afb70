package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/backend"
	"github.com/FACorreiaa/rms-templui/internal/app/client"
	database "github.com/FACorreiaa/rms-templui/internal/db"
	"github.com/FACorreiaa/rms-templui/internal/pkg/config"
	"github.com/FACorreiaa/rms-templui/internal/pkg/storage"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	storage  storage.Backend
	registry *client.Registry
	router   http.Handler
}

// New creates a new Server instance with all dependencies
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	backing, err := s.setupStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}
	s.storage = backing

	api, err := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	if err != nil {
		_ = backing.Close()
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	s.registry = client.NewRegistry(backing, api, client.Options{
		IdleTTL:    cfg.Client.IdleTTL,
		RoleSwitch: cfg.DebugRoleSwitch,
	}, logger)

	return s, nil
}

// setupStorage opens the durable backend that stands in for browser storage.
func (s *Server) setupStorage(ctx context.Context) (storage.Backend, error) {
	sc := s.cfg.Storage
	s.logger.Info("Setting up client storage", zap.String("driver", sc.Driver))

	switch sc.Driver {
	case "redis":
		return storage.NewRedis(ctx, sc.Redis)
	case "postgres":
		return s.setupDatabase(ctx)
	}
	return storage.NewMemory(sc.SnapshotPath, s.logger)
}

// setupDatabase initializes the database connection and runs migrations
func (s *Server) setupDatabase(ctx context.Context) (storage.Backend, error) {
	pg := s.cfg.Storage.Postgres

	dbConfig, err := database.NewDatabaseConfig(pg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database configuration: %w", err)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, pg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	if !database.WaitForDB(ctx, pool, s.logger) {
		pool.Close()
		return nil, fmt.Errorf("database at %s:%s not reachable", pg.Host, pg.Port)
	}
	s.logger.Info("Connected to Postgres",
		zap.String("host", pg.Host),
		zap.String("port", pg.Port),
		zap.String("database", pg.DB))

	if err = database.RunMigrations(dbConfig.ConnectionURL, s.logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s.logger.Info("Database setup completed successfully")
	return storage.NewPostgres(pool, pool.Close), nil
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

func (s *Server) Registry() *client.Registry {
	return s.registry
}

func (s *Server) GetLogger() *zap.Logger {
	return s.logger
}

func (s *Server) GetConfig() *config.Config {
	return s.cfg
}

// Close flushes and closes the storage backend.
func (s *Server) Close() {
	if s.storage == nil {
		return
	}
	if err := s.storage.Close(); err != nil {
		s.logger.Error("Failed to close storage", zap.Error(err))
	}
}
