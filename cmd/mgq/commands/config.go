package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"moderngov/internal/components/telemetry"
	"moderngov/lib/configutil"
	configlibsql "moderngov/lib/configutil/libsql"

	"dario.cat/mergo"
)

const configName = "mgq.json5"

type CacheConfig struct {
	configlibsql.Struct

	MemoryMB int `json:"memory_mb" validate:"gte=0"`
	TTLHours int `json:"ttl_hours" validate:"gte=0"`
}

type HttpConfig struct {
	TimeoutSeconds    int     `json:"timeout_seconds" validate:"gte=0"`
	RequestsPerSecond float64 `json:"requests_per_second" validate:"gte=0"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
}

type Config struct {
	Site      string           `json:"site"`
	Cache     CacheConfig      `json:"cache"`
	Http      HttpConfig       `json:"http"`
	LogLevel  string           `json:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func defaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Struct:   configlibsql.Struct{File: "mgq.cache.db"},
			MemoryMB: 16,
			TTLHours: 24,
		},
		Http: HttpConfig{
			TimeoutSeconds:    10,
			RequestsPerSecond: 2,
		},
		LogLevel: "info",
	}
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (c HttpConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// loadConfig reads mgq.json5 from the working directory or one of its
// parents, anything left unset falls back to the defaults.
func loadConfig() (Config, error) {
	config, err := configutil.ReadRecursively[Config](configName)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", configName, err)
	}

	err = mergo.Merge(&config, defaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("apply config defaults: %w", err)
	}
	err = configutil.Validate(config)
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", configName, err)
	}
	return config, nil
}
