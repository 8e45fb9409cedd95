package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/coco-backend/internal/app"
	"github.com/yungbote/coco-backend/internal/platform/logger"
)

func main() {
	// Env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Failed to read .env: %v\n", err)
	}

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log)
	if err != nil {
		log.Error("App init failed", "error", err)
		os.Exit(1)
	}
	if err := a.Start(); err != nil {
		log.Error("App start failed", "error", err)
		a.Close()
		os.Exit(1)
	}

	errc := make(chan error, 1)
	go func() { errc <- a.Run() }()

	select {
	case err := <-errc:
		if err != nil {
			log.Error("HTTP server stopped", "error", err)
			a.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		log.Warn("Graceful shutdown incomplete", "error", err)
	}
}
