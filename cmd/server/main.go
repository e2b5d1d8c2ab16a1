package main

import (
	"log/slog"
	"net/http"

	"github.com/usetandem/tandem/internal/app"
	"github.com/usetandem/tandem/internal/config"
	"github.com/usetandem/tandem/internal/logger"
	"github.com/usetandem/tandem/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := a.Close()
		if closeErr != nil {
			slog.Error("shutdown cleanup failed", "error", closeErr)
		}
	}()

	handler := routes.SetupRoutes(a)
	slog.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv)

	err = http.ListenAndServe(":"+cfg.Port, handler)
	if err != nil {
		slog.Error("server exited", "error", err)
		panic(err)
	}
}
