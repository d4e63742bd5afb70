package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/rms-templui/internal/pkg/config"
	"github.com/FACorreiaa/rms-templui/internal/server"
	"github.com/FACorreiaa/rms-templui/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if err := logger.Init(level, zap.String("service", "rms-templui"), zap.String("env", cfg.AppEnv)); err != nil {
		return err
	}
	l := logger.Log
	defer func() { _ = l.Sync() }()

	otelShutdown, err := server.InitObservability(cfg.Observability, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			l.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	ctx := context.Background()
	srv, err := server.New(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer srv.Close()

	srv.SetRouter(server.SetupRouter(srv))

	// pprof on a separate port, not exposed publicly
	server.StartPprofServer(cfg.Observability.PprofAddr, l)

	if err := server.Run(ctx, srv.HTTPServer(), l); err != nil {
		l.Error("Server error", zap.Error(err))
		return err
	}
	l.Info("Graceful shutdown complete")
	return nil
}
