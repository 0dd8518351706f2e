package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Path string `json:"path"`

	MaxOpenConns int `json:"max_open_conns"`
	MaxIdleConns int `json:"max_idle_conns"`

	ConnMaxLifetime       time.Duration `json:"-"`
	ConnMaxLifetimeString string        `json:"conn_max_lifetime"`

	BusyTimeout       time.Duration `json:"-"`
	BusyTimeoutString string        `json:"busy_timeout"`
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Path) != "" {
		result.Path = strings.TrimSpace(override.Path)
	}
	if override.MaxOpenConns > 0 {
		result.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		result.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		result.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if strings.TrimSpace(override.ConnMaxLifetimeString) != "" {
		result.ConnMaxLifetimeString = strings.TrimSpace(override.ConnMaxLifetimeString)
	}
	if override.BusyTimeout > 0 {
		result.BusyTimeout = override.BusyTimeout
	}
	if strings.TrimSpace(override.BusyTimeoutString) != "" {
		result.BusyTimeoutString = strings.TrimSpace(override.BusyTimeoutString)
	}
	return result
}

// LoadConfig resolves store settings from an optional JSON file pointed at by
// IDEAFORGE_DB_CONFIG_FILE, overlaid with individual environment variables.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("IDEAFORGE_DB_CONFIG_FILE")); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg, err := loadConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(envCfg)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 8
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		if c.ConnMaxLifetimeString != "" {
			if parsed, err := time.ParseDuration(c.ConnMaxLifetimeString); err == nil {
				c.ConnMaxLifetime = parsed
			}
		}
		if c.ConnMaxLifetime <= 0 {
			c.ConnMaxLifetime = 15 * time.Minute
		}
	}
	if c.BusyTimeout <= 0 {
		if c.BusyTimeoutString != "" {
			if parsed, err := time.ParseDuration(c.BusyTimeoutString); err == nil {
				c.BusyTimeout = parsed
			}
		}
		if c.BusyTimeout <= 0 {
			c.BusyTimeout = 5 * time.Second
		}
	}
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read store config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse store config: %w", err)
	}
	return cfg, nil
}

func loadConfigEnv() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("IDEAFORGE_DB_PATH")); path != "" {
		cfg.Path = path
	}
	if open := strings.TrimSpace(os.Getenv("IDEAFORGE_DB_MAX_OPEN_CONNS")); open != "" {
		value, err := strconv.Atoi(open)
		if err != nil {
			return Config{}, fmt.Errorf("parse IDEAFORGE_DB_MAX_OPEN_CONNS: %w", err)
		}
		if value > 0 {
			cfg.MaxOpenConns = value
		}
	}
	if idle := strings.TrimSpace(os.Getenv("IDEAFORGE_DB_MAX_IDLE_CONNS")); idle != "" {
		value, err := strconv.Atoi(idle)
		if err != nil {
			return Config{}, fmt.Errorf("parse IDEAFORGE_DB_MAX_IDLE_CONNS: %w", err)
		}
		if value > 0 {
			cfg.MaxIdleConns = value
		}
	}
	if lifetime := strings.TrimSpace(os.Getenv("IDEAFORGE_DB_CONN_MAX_LIFETIME")); lifetime != "" {
		cfg.ConnMaxLifetimeString = lifetime
		if parsed, err := time.ParseDuration(lifetime); err == nil {
			cfg.ConnMaxLifetime = parsed
		}
	}
	if busy := strings.TrimSpace(os.Getenv("IDEAFORGE_DB_BUSY_TIMEOUT")); busy != "" {
		cfg.BusyTimeoutString = busy
		if parsed, err := time.ParseDuration(busy); err == nil {
			cfg.BusyTimeout = parsed
		}
	}
	return cfg, nil
}
