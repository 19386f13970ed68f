// Package config carrega a configuração da API e do auditor.
//
// A ordem é: valores padrão, arquivo YAML (--config ou RESERVAS_CONFIG), variáveis
// RESERVAS_* e, por fim, Validate. O arquivo é opcional; sem ele valem os padrões,
// que servem ao desenvolvimento local com armazenamento em memória.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile é a variável que aponta o arquivo de configuração.
const EnvConfigFile = "RESERVAS_CONFIG"

type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

type Config struct {
	Environment Environment    `yaml:"environment"`
	HTTP        HTTPConfig     `yaml:"http"`
	Database    DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	Redis       RedisConfig    `yaml:"redis"`
	Events      EventsConfig   `yaml:"events"`
	Log         LogConfig      `yaml:"log"`
	Admin       AdminConfig    `yaml:"admin"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver: postgres ou memory.
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	SlowThreshold   time.Duration `yaml:"slow_threshold"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	Issuer     string        `yaml:"issuer"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
	// Revocation: memory, redis ou database.
	Revocation      string        `yaml:"revocation"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type EventsConfig struct {
	// Driver: memory, gochannel, redis ou kafka.
	Driver        string   `yaml:"driver"`
	KafkaBrokers  []string `yaml:"kafka_brokers"`
	ConsumerGroup string   `yaml:"consumer_group"`
	Consumer      string   `yaml:"consumer"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// AdminConfig descreve o administrador criado na partida quando ainda não existe.
// Sem Email nada é criado.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

func Default() *Config {
	return &Config{
		Environment: Development,
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "memory",
			AutoMigrate:     true,
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			SlowThreshold:   200 * time.Millisecond,
		},
		Auth: AuthConfig{
			Issuer:          "reservas-api",
			TokenTTL:        time.Hour,
			BcryptCost:      10,
			Revocation:      "memory",
			CleanupInterval: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Events: EventsConfig{
			Driver:        "memory",
			KafkaBrokers:  []string{"localhost:9092"},
			ConsumerGroup: "reservas-auditor",
			Consumer:      "auditor",
		},
		Log: LogConfig{
			Level: "info",
		},
		Admin: AdminConfig{
			Name: "Administrador",
		},
	}
}

// Load lê path (se não vazio), aplica o ambiente e valida.
func Load(path string) (*Config, error) {
	return load(path, (*Config).Validate)
}

// LoadAuditor é Load validando apenas o que o auditor usa: eventos e Redis.
func LoadAuditor(path string) (*Config, error) {
	return load(path, (*Config).ValidateEvents)
}

func load(path string, validate func(*Config) error) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// applyEnv sobrepõe os valores com as variáveis RESERVAS_*.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = d
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}

	if v, ok := lookup("RESERVAS_ENVIRONMENT"); ok {
		c.Environment = Environment(v)
	}
	str("RESERVAS_HTTP_ADDR", &c.HTTP.Addr)
	str("RESERVAS_DATABASE_DRIVER", &c.Database.Driver)
	str("RESERVAS_DATABASE_DSN", &c.Database.DSN)
	if v, ok := lookup("RESERVAS_DATABASE_AUTO_MIGRATE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("RESERVAS_DATABASE_AUTO_MIGRATE: %w", err))
		} else {
			c.Database.AutoMigrate = b
		}
	}
	str("RESERVAS_JWT_SECRET", &c.Auth.JWTSecret)
	duration("RESERVAS_TOKEN_TTL", &c.Auth.TokenTTL)
	integer("RESERVAS_BCRYPT_COST", &c.Auth.BcryptCost)
	str("RESERVAS_REVOCATION", &c.Auth.Revocation)
	str("RESERVAS_REDIS_ADDR", &c.Redis.Addr)
	str("RESERVAS_REDIS_PASSWORD", &c.Redis.Password)
	integer("RESERVAS_REDIS_DB", &c.Redis.DB)
	str("RESERVAS_EVENTS_DRIVER", &c.Events.Driver)
	if v, ok := lookup("RESERVAS_KAFKA_BROKERS"); ok {
		c.Events.KafkaBrokers = splitList(v)
	}
	str("RESERVAS_CONSUMER_GROUP", &c.Events.ConsumerGroup)
	str("RESERVAS_LOG_LEVEL", &c.Log.Level)
	str("RESERVAS_ADMIN_NAME", &c.Admin.Name)
	str("RESERVAS_ADMIN_EMAIL", &c.Admin.Email)
	str("RESERVAS_ADMIN_PASSWORD", &c.Admin.Password)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error

	if !contains([]string{string(Development), string(Staging), string(Production)}, string(c.Environment)) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}

	if !contains([]string{"postgres", "memory"}, c.Database.Driver) {
		errs = append(errs, fmt.Errorf("database.driver must be one of: postgres, memory (got %q)", c.Database.Driver))
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required for the postgres driver"))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	} else if c.Environment == Production && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must have at least 32 bytes in production"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if !contains([]string{"memory", "redis", "database"}, c.Auth.Revocation) {
		errs = append(errs, fmt.Errorf("auth.revocation must be one of: memory, redis, database (got %q)", c.Auth.Revocation))
	}
	if c.Auth.Revocation == "database" && c.Database.Driver != "postgres" {
		errs = append(errs, errors.New("auth.revocation=database requires database.driver=postgres"))
	}
	if c.Auth.Revocation == "memory" && c.Environment == Production {
		errs = append(errs, errors.New("auth.revocation=memory is not shared between instances; use redis or database in production"))
	}

	if c.Admin.Email != "" && len(c.Admin.Password) < 6 {
		errs = append(errs, errors.New("admin.password must have at least 6 characters"))
	}

	errs = append(errs, c.ValidateEvents())
	return errors.Join(errs...)
}

// ValidateEvents confere o barramento de eventos e o Redis.
func (c *Config) ValidateEvents() error {
	var errs []error
	if !contains([]string{"memory", "gochannel", "redis", "kafka"}, c.Events.Driver) {
		errs = append(errs, fmt.Errorf("events.driver must be one of: memory, gochannel, redis, kafka (got %q)", c.Events.Driver))
	}
	if c.Events.Driver == "kafka" && len(c.Events.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("events.kafka_brokers is required for the kafka driver"))
	}
	if c.UsesRedis() && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	return errors.Join(errs...)
}

// UsesRedis informa se algum componente precisa do cliente Redis.
func (c *Config) UsesRedis() bool {
	return c.Auth.Revocation == "redis" || c.Events.Driver == "redis"
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
