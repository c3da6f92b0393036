package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL        string `toml:"redis_url"`
		TokenHeader     string `toml:"token_header"`
		SessionTTLHours int    `toml:"session_ttl_hours"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Captures struct {
		Dir                  string `toml:"dir"`
		SweepIntervalMinutes int    `toml:"sweep_interval_minutes"`
	} `toml:"captures"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Auth.TokenHeader == "" {
		config.Auth.TokenHeader = "Authorization"
	}
	if config.Auth.SessionTTLHours == 0 {
		config.Auth.SessionTTLHours = 24
	}
	if config.Captures.Dir == "" {
		config.Captures.Dir = "./captures"
	}
	if config.Captures.SweepIntervalMinutes == 0 {
		config.Captures.SweepIntervalMinutes = 30
	}

	logger.Debug.Printf("Loaded config: server=%+v captures=%+v", config.Server, config.Captures)

	return &config, nil
}
