package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/go-reservas/internal/audit"
	"github.com/mateusmacedo/go-reservas/internal/config"
	"github.com/mateusmacedo/go-reservas/internal/server"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	redisAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/redis/adapter"
	zapAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/zaplogger/adapter"
)

// O auditor consome os eventos publicados pela API em Redis Streams ou Kafka e os
// grava no log estruturado.
func main() {
	flags, flagSet, err := config.ParseFlags("reservas-auditor", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if flags.Help {
		flagSet.PrintDefaults()
		return
	}

	cfg, err := config.LoadAuditor(flags.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	appLogger, err := zapAdapter.NewZapAppLogger(zapAdapter.Options{
		App:         "reservas-auditor",
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "creating logger:", err)
		os.Exit(1)
	}

	if err := run(cfg, appLogger); err != nil {
		pkgApp.LogError(context.Background(), appLogger, "Erro ao executar o auditor", err, nil)
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger pkgApp.AppLogger) error {
	if cfg.Events.Driver != "redis" && cfg.Events.Driver != "kafka" {
		return fmt.Errorf("the auditor needs events.driver redis or kafka (got %q)", cfg.Events.Driver)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var redisClient redis.UniversalClient
	if cfg.Events.Driver == "redis" {
		redisClient = redisAdapter.NewRedisClient(redisAdapter.ClientOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisAdapter.Ping(ctx, redisClient); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
	}

	eventBus, closeBus, err := server.NewEventBus(cfg.Events, redisClient, appLogger)
	if err != nil {
		return fmt.Errorf("creating event bus: %w", err)
	}

	audit.Register(eventBus, audit.NewChangeLogHandler(appLogger))
	pkgApp.LogInfo(ctx, appLogger, "Auditor iniciado", map[string]interface{}{
		"events":         cfg.Events.Driver,
		"consumer_group": cfg.Events.ConsumerGroup,
	})

	<-ctx.Done()
	pkgApp.LogInfo(context.Background(), appLogger, "Encerrando auditor...", nil)

	if closeBus != nil {
		if err := closeBus(); err != nil {
			return err
		}
	}
	return nil
}
