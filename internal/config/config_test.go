package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected database.driver=memory, got %s", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("expected token_ttl=1h, got %s", cfg.Auth.TokenTTL)
	}

	// sem segredo o padrão não é utilizável
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "auth.jwt_secret is required") {
		t.Errorf("expected jwt_secret error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reservas.yaml")
	content := `
environment: staging
http:
  addr: ":9090"
  read_timeout: 3s
database:
  driver: postgres
  dsn: "host=db user=app dbname=reservas"
auth:
  jwt_secret: "segredo"
  token_ttl: 30m
  revocation: database
events:
  driver: kafka
  kafka_brokers: ["k1:9092", "k2:9092"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("environment = %s", cfg.Environment)
	}
	if cfg.HTTP.Addr != ":9090" || cfg.HTTP.ReadTimeout != 3*time.Second {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	// valores ausentes do arquivo mantêm o padrão
	if cfg.HTTP.WriteTimeout != 15*time.Second {
		t.Errorf("write_timeout = %s", cfg.HTTP.WriteTimeout)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("token_ttl = %s", cfg.Auth.TokenTTL)
	}
	if len(cfg.Events.KafkaBrokers) != 2 {
		t.Errorf("kafka_brokers = %v", cfg.Events.KafkaBrokers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"RESERVAS_JWT_SECRET":     "x",
		"RESERVAS_TOKEN_TTL":      "2h",
		"RESERVAS_KAFKA_BROKERS":  "a:1, b:2,,",
		"RESERVAS_REDIS_DB":       "3",
		"RESERVAS_ADMIN_EMAIL":    "admin@example.com",
		"RESERVAS_ADMIN_PASSWORD": "secret1",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}

	if cfg.Auth.JWTSecret != "x" || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if got := strings.Join(cfg.Events.KafkaBrokers, "|"); got != "a:1|b:2" {
		t.Errorf("kafka_brokers = %q", got)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("redis.db = %d", cfg.Redis.DB)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestApplyEnvInvalidValues(t *testing.T) {
	lookup := func(name string) (string, bool) {
		switch name {
		case "RESERVAS_TOKEN_TTL":
			return "uma hora", true
		case "RESERVAS_BCRYPT_COST":
			return "dez", true
		}
		return "", false
	}

	err := Default().applyEnv(lookup)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{"RESERVAS_TOKEN_TTL", "RESERVAS_BCRYPT_COST"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown environment", func(c *Config) { c.Environment = "qa" }, "invalid environment"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, "database.dsn"},
		{"unknown database driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"database revocation needs postgres", func(c *Config) { c.Auth.Revocation = "database" }, "requires database.driver=postgres"},
		{"memory revocation in production", func(c *Config) {
			c.Environment = Production
			c.Auth.JWTSecret = strings.Repeat("s", 32)
		}, "not shared between instances"},
		{"short secret in production", func(c *Config) {
			c.Environment = Production
			c.Auth.Revocation = "redis"
		}, "at least 32 bytes"},
		{"kafka without brokers", func(c *Config) {
			c.Events.Driver = "kafka"
			c.Events.KafkaBrokers = nil
		}, "kafka_brokers"},
		{"redis without addr", func(c *Config) {
			c.Events.Driver = "redis"
			c.Redis.Addr = ""
		}, "redis.addr"},
		{"short admin password", func(c *Config) {
			c.Admin.Email = "admin@example.com"
			c.Admin.Password = "123"
		}, "admin.password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.JWTSecret = "segredo"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	t.Setenv(EnvConfigFile, "/etc/reservas.yaml")

	flags, _, err := ParseFlags("reservas-api", nil)
	if err != nil {
		t.Fatal(err)
	}
	if flags.ConfigPath != "/etc/reservas.yaml" {
		t.Errorf("config path from env = %q", flags.ConfigPath)
	}

	flags, _, err = ParseFlags("reservas-api", []string{"--config", "local.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if flags.ConfigPath != "local.yaml" {
		t.Errorf("config path from flag = %q", flags.ConfigPath)
	}

	flags, _, err = ParseFlags("reservas-api", []string{"-h"})
	if err != nil || !flags.Help {
		t.Errorf("help: flags=%+v err=%v", flags, err)
	}
}

func TestValidateEventsIgnoresAPISettings(t *testing.T) {
	cfg := Default()
	cfg.Events.Driver = "kafka"

	// o auditor não precisa do segredo JWT
	if err := cfg.ValidateEvents(); err != nil {
		t.Fatalf("ValidateEvents: %v", err)
	}

	cfg.Events.Driver = "nats"
	if err := cfg.ValidateEvents(); err == nil || !strings.Contains(err.Error(), "events.driver") {
		t.Fatalf("expected events.driver error, got %v", err)
	}
}
