package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"taskManager/internal/app"
	"taskManager/internal/config"
	"taskManager/internal/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Development); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(cfg).Init(initCtx)
	cancel()
	if err != nil {
		logger.Error("App: init failed", err)
		logger.Sync()
		os.Exit(1)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.Run(); err != nil {
			serverErr <- err
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"taskmanager": func(ctx context.Context) error {
				logger.Info("App: graceful shutdown initiated")
				return a.Shutdown(ctx)
			},
		},
	)

	var exitCode int
	select {
	case exitCode = <-wait:
	case err := <-serverErr:
		logger.Error("App: server stopped unexpectedly", err)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		if err := a.Shutdown(ctx); err != nil {
			logger.Error("App: shutdown failed", err)
		}
		cancel()
		exitCode = 1
	}

	logger.Info("App: exited", zap.Int("code", exitCode))
	logger.Sync()
	os.Exit(exitCode)
}
