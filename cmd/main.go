package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/config"
	"github.com/mateusmacedo/go-reservas/internal/server"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-reservas/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/zaplogger/adapter"
)

func main() {
	flags, flagSet, err := config.ParseFlags("reservas-api", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if flags.Help {
		flagSet.PrintDefaults()
		return
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	appLogger, err := zapAdapter.NewZapAppLogger(zapAdapter.Options{
		App:         "reservas-api",
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "creating logger:", err)
		os.Exit(1)
	}

	if err := run(cfg, appLogger); err != nil {
		pkgApp.LogError(context.Background(), appLogger, "Erro ao executar a API", err, nil)
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger pkgApp.AppLogger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := server.Build(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			pkgApp.LogError(context.Background(), appLogger, "Erro ao fechar conexões", err, nil)
		}
	}()

	if _, err := server.EnsureAdmin(ctx, app.Store, app.Hasher, cfg.Admin, pkgInfra.NewUUIDGenerator(), appLogger); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	if cleaner, ok := app.Revocation.(auth.Cleaner); ok {
		go auth.RunCleanup(ctx, cleaner, cfg.Auth.CleanupInterval, appLogger)
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      app.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		pkgApp.LogInfo(ctx, appLogger, "Server starting on: "+cfg.HTTP.Addr, map[string]interface{}{
			"environment": cfg.Environment,
			"database":    cfg.Database.Driver,
			"events":      cfg.Events.Driver,
			"revocation":  cfg.Auth.Revocation,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
	case <-ctx.Done():
		pkgApp.LogInfo(context.Background(), appLogger, "Encerrando servidor...", nil)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		pkgApp.LogError(context.Background(), appLogger, "Erro ao encerrar servidor", err, nil)
	}

	pkgApp.LogInfo(context.Background(), appLogger, "Servidor encerrado", nil)
	return nil
}
