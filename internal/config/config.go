package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "powerbill/libs/config"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"POWERBILL_HTTP_PORT"`
}

// DatabaseConfig holds Postgres settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"POWERBILL_POSTGRES_DSN"`
}

// RedisConfig holds redis settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"POWERBILL_REDIS_ADDR"`
	Password string `yaml:"password" env:"POWERBILL_REDIS_PASSWORD"`
}

// JWTConfig holds token settings.
type JWTConfig struct {
	Secret           string `yaml:"secret" env:"POWERBILL_JWT_SECRET"`
	ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"POWERBILL_JWT_EXPIRES_MINUTES"`
}

// BillingConfig holds the process-wide rate constants. They are fixed
// configuration, not user-editable data.
type BillingConfig struct {
	UnitRate float64 `yaml:"unitRate" env:"POWERBILL_UNIT_RATE"`
	TaxRate  float64 `yaml:"taxRate" env:"POWERBILL_TAX_RATE"`
}

// SchedulerConfig holds the monthly-bill check cadence.
type SchedulerConfig struct {
	CheckInterval time.Duration `yaml:"checkInterval" env:"POWERBILL_SCHEDULER_INTERVAL"`
}

// KafkaConfig holds the optional event publisher settings; events are
// disabled when no brokers are configured.
type KafkaConfig struct {
	Brokers string `yaml:"brokers" env:"POWERBILL_KAFKA_BROKERS"`
	Topic   string `yaml:"topic" env:"POWERBILL_KAFKA_TOPIC"`
}

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Billing   BillingConfig   `yaml:"billing"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Kafka     KafkaConfig     `yaml:"kafka"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP:      HTTPConfig{Port: "8080"},
		JWT:       JWTConfig{ExpiresInMinutes: 60},
		Billing:   BillingConfig{UnitRate: 5, TaxRate: 0.18},
		Scheduler: SchedulerConfig{CheckInterval: time.Hour},
		Kafka:     KafkaConfig{Topic: "billing.events"},
	}

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		return nil, errors.New("config: database DSN is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("config: redis addr is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	if cfg.JWT.ExpiresInMinutes <= 0 {
		cfg.JWT.ExpiresInMinutes = 60
	}
	if cfg.Billing.UnitRate <= 0 {
		return nil, errors.New("config: unit rate must be positive")
	}
	if cfg.Billing.TaxRate < 0 {
		return nil, errors.New("config: tax rate cannot be negative")
	}
	if cfg.Scheduler.CheckInterval <= 0 {
		cfg.Scheduler.CheckInterval = time.Hour
	}

	return cfg, nil
}

// HTTPAddress ensures we always return a host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}

// KafkaBrokers splits the configured broker list; empty when events are
// disabled.
func (c *Config) KafkaBrokers() []string {
	raw := strings.Split(c.Kafka.Brokers, ",")
	brokers := make([]string, 0, len(raw))
	for _, b := range raw {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
