package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/locvowork/dropdown_export/internal/bootstrap"
	"github.com/locvowork/dropdown_export/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application", err)
		app.Close()
		os.Exit(1)
	}

	go func() {
		if err := app.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorLog(context.Background(), "Server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.InfoLog(context.Background(), "Shutting down")
	if err := app.Shutdown(10 * time.Second); err != nil {
		logger.ErrorLog(context.Background(), "Failed to shut down server", err)
	}
	app.Close()
}
