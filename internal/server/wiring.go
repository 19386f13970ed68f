package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	internalApp "github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/audit"
	"github.com/mateusmacedo/go-reservas/internal/auth"
	authInfra "github.com/mateusmacedo/go-reservas/internal/auth/infrastructure"
	"github.com/mateusmacedo/go-reservas/internal/config"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/infrastructure"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-reservas/pkg/infrastructure"
	channelsAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/channels/adapter"
	kafkaAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/kafka/adapter"
	redisAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/redis/adapter"
)

// App reúne os componentes montados a partir da configuração.
type App struct {
	Store      domain.Store
	Authority  *auth.Authority
	Hasher     auth.PasswordHasher
	Revocation auth.RevocationStore
	EventBus   internalApp.EventBus
	Handler    http.Handler

	closers []func() error
}

// Build abre o armazenamento, a lista de revogação e o barramento de eventos conforme
// cfg e monta o roteador. Com os drivers memory e gochannel o auditor roda no próprio processo.
func Build(ctx context.Context, cfg *config.Config, logger pkgApp.AppLogger) (*App, error) {
	app := &App{}
	if err := app.build(ctx, cfg, logger); err != nil {
		return nil, multierr.Append(err, app.Close())
	}
	return app, nil
}

func (app *App) build(ctx context.Context, cfg *config.Config, logger pkgApp.AppLogger) error {
	store, db, err := OpenStore(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	app.Store = store
	if db != nil {
		app.closers = append(app.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}

	var redisClient redis.UniversalClient
	if cfg.UsesRedis() {
		redisClient = redisAdapter.NewRedisClient(redisAdapter.ClientOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.closers = append(app.closers, redisClient.Close)
		if err := redisAdapter.Ping(ctx, redisClient); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
	}

	if db != nil && cfg.Database.AutoMigrate {
		var extra []interface{}
		if cfg.Auth.Revocation == "database" {
			extra = append(extra, &authInfra.RevokedToken{})
		}
		if err := infrastructure.Migrate(db, extra...); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}

	if app.Revocation, err = NewRevocationStore(cfg.Auth.Revocation, db, redisClient); err != nil {
		return err
	}

	app.Hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.Authority, err = auth.NewAuthority(auth.Options{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
	}, store.Users(), app.Hasher, app.Revocation, logger)
	if err != nil {
		return err
	}

	eventBus, closeBus, err := NewEventBus(cfg.Events, redisClient, logger)
	if err != nil {
		return fmt.Errorf("creating event bus: %w", err)
	}
	app.EventBus = eventBus
	if closeBus != nil {
		app.closers = append(app.closers, closeBus)
	}
	if cfg.Events.Driver == "memory" || cfg.Events.Driver == "gochannel" {
		audit.Register(eventBus, audit.NewChangeLogHandler(logger))
	}

	app.Handler = NewRouter(Dependencies{
		Store:       store,
		Authority:   app.Authority,
		Hasher:      app.Hasher,
		EventBus:    eventBus,
		IDGenerator: pkgInfra.NewUUIDGenerator(),
		Logger:      logger,
	})
	return nil
}

// Close libera as conexões na ordem inversa da abertura.
func (app *App) Close() error {
	var errs error
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, app.closers[i]())
	}
	app.closers = nil
	return errs
}

// OpenStore devolve o armazenamento do driver configurado. O *gorm.DB só existe no postgres.
func OpenStore(cfg config.DatabaseConfig, logger pkgApp.AppLogger) (domain.Store, *gorm.DB, error) {
	switch cfg.Driver {
	case "memory":
		return infrastructure.NewInMemoryStore(logger), nil, nil
	case "postgres":
		db, err := infrastructure.OpenPostgres(infrastructure.PostgresOptions{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			SlowThreshold:   cfg.SlowThreshold,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return infrastructure.NewGormStore(db, logger), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func NewRevocationStore(driver string, db *gorm.DB, client redis.UniversalClient) (auth.RevocationStore, error) {
	switch driver {
	case "memory":
		return auth.NewMemoryRevocationStore(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("revocation driver redis needs a redis client")
		}
		return authInfra.NewRedisRevocationStore(client), nil
	case "database":
		if db == nil {
			return nil, fmt.Errorf("revocation driver database needs the postgres store")
		}
		return authInfra.NewGormRevocationStore(db), nil
	default:
		return nil, fmt.Errorf("unknown revocation driver %q", driver)
	}
}

// NewEventBus devolve o barramento do driver configurado e a função que o fecha
// (nil para o barramento em memória).
func NewEventBus(cfg config.EventsConfig, client redis.UniversalClient, logger pkgApp.AppLogger) (internalApp.EventBus, func() error, error) {
	switch cfg.Driver {
	case "memory":
		return pkgInfra.NewSimpleEventBus[domain.ChangeEvent, domain.ChangeData](logger), nil, nil
	case "gochannel":
		bus := channelsAdapter.NewGoChannelEventBus[domain.ChangeEvent, domain.ChangeData](logger)
		return bus, bus.Close, nil
	case "redis":
		if client == nil {
			return nil, nil, fmt.Errorf("events driver redis needs a redis client")
		}
		bus, err := redisAdapter.NewRedisEventBus[domain.ChangeEvent, domain.ChangeData](client, redisAdapter.StreamOptions{
			ConsumerGroup: cfg.ConsumerGroup,
			Consumer:      cfg.Consumer,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return bus, bus.Close, nil
	case "kafka":
		bus, err := kafkaAdapter.NewKafkaEventBus[domain.ChangeEvent, domain.ChangeData](kafkaAdapter.Options{
			Brokers:       cfg.KafkaBrokers,
			ConsumerGroup: cfg.ConsumerGroup,
			ClientID:      cfg.Consumer,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return bus, bus.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}
