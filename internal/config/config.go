// Package config loads process configuration from the environment and an optional file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the resolved process configuration.
type Config struct {
	AppPort      string
	DBDriver     string
	DatabaseDSN  string
	JWTSecret    string
	JWTIssuer    string
	RabbitMQURL  string
	Exchange     string
	FrontendURL  string
	LogLevel     string
	Location     *time.Location
	ShutdownWait time.Duration

	Districts     []string
	Products      []string
	DeliveryTimes []string
}

// Load reads configuration through v. Pass nil to use a fresh viper instance.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := Config{
		AppPort:       v.GetString("APP_PORT"),
		DBDriver:      strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTIssuer:     v.GetString("JWT_ISSUER"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		Exchange:      v.GetString("RABBITMQ_EXCHANGE"),
		FrontendURL:   v.GetString("FRONTEND_URL"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		ShutdownWait:  v.GetDuration("SHUTDOWN_TIMEOUT"),
		Districts:     v.GetStringSlice("catalog.districts"),
		Products:      v.GetStringSlice("catalog.products"),
		DeliveryTimes: v.GetStringSlice("catalog.delivery_times"),
	}

	loc, err := time.LoadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=orderdesk port=5432 sslmode=disable")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "orders")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "Local")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	// Bind so AutomaticEnv picks them up even without defaults.
	_ = v.BindEnv("JWT_SECRET")
	_ = v.BindEnv("CONFIG_FILE")
}

func (c Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDriver != DriverMemory && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}
