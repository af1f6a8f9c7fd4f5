package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	BotToken string         `mapstructure:"bot_token"`
	LogLevel string         `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Timezone string         `mapstructure:"timezone" validate:"required,timezone"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required,numeric"`
	Name     string `mapstructure:"name" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	SSLMode  string `mapstructure:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int        `mapstructure:"port" validate:"min=1,max=65535"`
	IdentityHeader string     `mapstructure:"identity_header" validate:"required"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig lists the origins allowed to call the API from a browser
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TelegramConfig holds Telegram linking settings
type TelegramConfig struct {
	LinkCodeTTL time.Duration `mapstructure:"link_code_ttl" validate:"min=1m"`
}

var envBindings = map[string]string{
	"bot_token":                   "BOT_TOKEN",
	"log_level":                   "LOG_LEVEL",
	"timezone":                    "TIMEZONE",
	"database.host":               "DB_HOST",
	"database.port":               "DB_PORT",
	"database.name":               "DB_NAME",
	"database.user":               "DB_USER",
	"database.password":           "DB_PASSWORD",
	"database.sslmode":            "DB_SSLMODE",
	"server.port":                 "HTTP_PORT",
	"server.identity_header":      "IDENTITY_HEADER",
	"server.cors.allowed_origins": "CORS_ALLOWED_ORIGINS",
	"telegram.link_code_ttl":      "LINK_CODE_TTL",
}

// Load reads configuration from an optional YAML file and environment variables.
// Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/interlinear")
	}

	v.SetDefault("log_level", "info")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "interlinear")
	v.SetDefault("database.user", "interlinear")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.identity_header", "X-User-ID")
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("telegram.link_code_ttl", 15*time.Minute)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(trans))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the default reviewer timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// BotEnabled reports whether the Telegram channel is configured
func (c *Config) BotEnabled() bool {
	return c.BotToken != ""
}
