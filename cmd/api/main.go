package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"flowcanvas/infrastructure/config"
	"flowcanvas/infrastructure/di"
	"flowcanvas/interfaces/http/rest"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	if container.LogWatcher != nil {
		container.LogWatcher.Start()
		container.Logger.Info("Watching log file", zap.String("path", cfg.LogWatchPath))
	}

	router := rest.NewRouter(rest.Deps{
		Config:         cfg,
		CommandBus:     container.CommandBus,
		QueryBus:       container.QueryBus,
		Canvases:       container.Canvases,
		Gestures:       container.Gestures,
		Store:          container.Store,
		LogStore:       container.LogStore,
		GestureLimiter: container.GestureLimiter,
		JWTValidator:   container.JWTValidator,
		Logger:         container.Logger,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router.Setup(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	_ = container.Logger.Sync()
	log.Println("server stopped")
}
