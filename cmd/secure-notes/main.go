// Package main Secure Notes API
//
// @title           Secure Notes API
// @version         1.0
// @description     API заметок с аутентификацией по JWT, федеративным входом и сбросом пароля

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/secure-notes/internal/app/securenotes"
	"github.com/magabrotheeeer/secure-notes/internal/config"
	"github.com/magabrotheeeer/secure-notes/internal/lib/logger"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, os.Stdout)

	log.Info("starting secure-notes", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := securenotes.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize application", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("application stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("secure-notes stopped gracefully")
}
