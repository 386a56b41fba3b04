package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the server configuration, loaded from an optional YAML file
// with environment variable overrides.
type Config struct {
	LogLevel string `yaml:"log-level" env:"CARDROOM_LOG_LEVEL" env-default:"info"`

	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Session Session `yaml:"session"`
}

type Server struct {
	Host            string        `yaml:"host" env:"CARDROOM_HOST" env-default:""`
	Port            int           `yaml:"port" env:"CARDROOM_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read-timeout" env:"CARDROOM_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write-timeout" env:"CARDROOM_WRITE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"CARDROOM_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

type Storage struct {
	// Type selects the backend, "memory" or "redis"
	Type  string `yaml:"type" env:"CARDROOM_STORAGE_TYPE" env-default:"memory"`
	Redis Redis  `yaml:"redis"`
}

type Redis struct {
	URL          string        `yaml:"url" env:"CARDROOM_REDIS_URL" env-default:"redis://localhost:6379/0"`
	PoolSize     int           `yaml:"pool-size" env:"CARDROOM_REDIS_POOL_SIZE" env-default:"10"`
	MinIdleConns int           `yaml:"min-idle-conns" env:"CARDROOM_REDIS_MIN_IDLE_CONNS" env-default:"2"`
	GameTTL      time.Duration `yaml:"game-ttl" env:"CARDROOM_REDIS_GAME_TTL" env-default:"24h"`
}

type Session struct {
	Duration time.Duration `yaml:"duration" env:"CARDROOM_SESSION_DURATION" env-default:"24h"`
}

// Load reads configuration from the given file, or from the environment
// alone when path is empty.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("reading config from environment: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	return cfg, nil
}
