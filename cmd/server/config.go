package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration, read from config.yaml with
// environment variable overrides for deployment secrets.
type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Auth struct {
		JWTSecret        string `yaml:"jwt_secret"`
		TokenExpiryHours int    `yaml:"token_expiry_hours"`
	} `yaml:"auth"`

	Rooms struct {
		RebroadcastNoops bool `yaml:"rebroadcast_noops"`
		IdleTTLMinutes   int  `yaml:"idle_ttl_minutes"`
	} `yaml:"rooms"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	LogLevel string `yaml:"log_level"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Rooms.RebroadcastNoops = true
	cfg.Rooms.IdleTTLMinutes = 30
	cfg.Auth.TokenExpiryHours = 24
	cfg.LogLevel = "info"
	return &cfg
}

// loadConfig reads the yaml file at path, then applies env overrides.
// A missing file is not an error; defaults plus env apply.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Auth.TokenExpiryHours = getEnvAsInt("TOKEN_EXPIRY_HOURS", cfg.Auth.TokenExpiryHours)

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET or auth.jwt_secret)")
	}

	return cfg, nil
}

func (c *Config) tokenExpiry() time.Duration {
	return time.Duration(c.Auth.TokenExpiryHours) * time.Hour
}

func (c *Config) roomIdleTTL() time.Duration {
	return time.Duration(c.Rooms.IdleTTLMinutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
