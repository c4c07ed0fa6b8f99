package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"harvester/harvester/config"
	"harvester/harvester/controllers"
	"harvester/harvester/routes"
	"harvester/harvester/services/pipeline"
	"harvester/harvester/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	if err := logging.InitLogger(cfg.LogDir); err != nil {
		fmt.Fprintln(os.Stderr, "log files disabled:", err)
	}
	defer logging.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p, deps := pipeline.Build(ctx, cfg)
	defer deps.Close()

	var store controllers.RunStore
	if deps.Runs != nil {
		store = deps.Runs
	}
	healthCtrl := controllers.NewHealthController(deps.Runs != nil, deps.MinIO != nil)
	runsCtrl := controllers.NewRunsController(p, store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// runs outlive any sensible request timeout, so only the health check gets one
	r.With(middleware.Timeout(60*time.Second)).Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/runs", routes.RunRoutes(runsCtrl, cfg))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
