package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/app"
	"go.uber.org/zap"
)

func main() {
	pkg.InitLogger()
	logger := pkg.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, cfg, cleanup, err := app.NewApp(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}
	defer cleanup()

	go func() {
		logger.Info("transfer API started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	// Flush logs before exit; stdout sync errors are expected on some platforms
	if err := logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
		_, _ = os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
	}
}
