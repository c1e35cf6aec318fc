package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"orderdesk/internal/config"
	"orderdesk/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize application", zap.Error(err))
	}

	go func() {
		zlog.Info("starting server", zap.String("addr", cfg.AppPort))
		if err := app.http.Listen(cfg.AppPort); err != nil {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down server")

	if err := app.http.ShutdownWithTimeout(cfg.ShutdownWait); err != nil {
		zlog.Error("error during fiber shutdown", zap.Error(err))
	}
	if err := app.close(); err != nil {
		zlog.Error("error releasing resources", zap.Error(err))
	}
	zlog.Info("server gracefully stopped")
}
