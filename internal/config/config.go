package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
}

// ServerConfig configures the WebSocket/HTTP listener.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"` // optional directory served at /, empty disables
}

// RedisConfig configures the optional stats store.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig configures match lifecycle policy.
type GameConfig struct {
	// AbandonedAfter is how long a game with no bound sockets may sit idle
	// before the registry reaps it, in minutes. 0 disables reaping.
	AbandonedAfter int `yaml:"abandoned_after"`
	// ReapInterval is how often the reaper scans, in minutes.
	ReapInterval int `yaml:"reap_interval"`
}

// AbandonedAfterDuration returns the idle-game eviction threshold.
func (c *GameConfig) AbandonedAfterDuration() time.Duration {
	return time.Duration(c.AbandonedAfter) * time.Minute
}

// ReapIntervalDuration returns the reaper scan interval.
func (c *GameConfig) ReapIntervalDuration() time.Duration {
	return time.Duration(c.ReapInterval) * time.Minute
}

// Load reads a YAML config file and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.ReapInterval == 0 {
		c.Game.ReapInterval = 5
	}
}
