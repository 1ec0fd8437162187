// Package config loads the settings shared by the service and the CLI.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"heavymetal-notifier/lib/configutil"
)

const (
	DefaultDatabaseUrl = "data/heavymetal.db"
	DefaultServicePort = 3000
	DefaultUserAgent   = "heavymetal-notifier/1.0"
	// DefaultSchedule runs on the 1st of every month at midnight.
	DefaultSchedule = "0 0 1 * *"
)

type MetallumConfig struct {
	MaxPages          int     `json:"max_pages"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type BandcampConfig struct {
	DelayMs int `json:"delay_ms"`
}

type Config struct {
	// BaseUrl is the public address of the service, used for feed links.
	BaseUrl string `json:"base_url"`
	// DatabaseUrl is a sqlite file path or a libsql url.
	DatabaseUrl string `json:"database_url"`
	// IsProd enables lookups against third party sites that are too slow
	// for development, like bandcamp.
	IsProd      bool   `json:"is_prod"`
	ServicePort int    `json:"service_port"`
	Timezone    string `json:"timezone"`
	UserAgent   string `json:"user_agent"`
	Schedule    string `json:"schedule"`

	Metallum MetallumConfig `json:"metallum"`
	Bandcamp BandcampConfig `json:"bandcamp"`
}

func (c Config) BandcampDelay() time.Duration {
	return time.Duration(c.Bandcamp.DelayMs) * time.Millisecond
}

func (c *Config) applyDefaults() {
	if c.DatabaseUrl == "" {
		c.DatabaseUrl = DefaultDatabaseUrl
	}
	if c.ServicePort == 0 {
		c.ServicePort = DefaultServicePort
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.BaseUrl == "" {
		c.BaseUrl = "http://localhost"
	}
}

func (c *Config) applyEnv() error {
	configutil.EnvString(&c.BaseUrl, "BASE_URL")
	configutil.EnvString(&c.DatabaseUrl, "DATABASE_URL")
	configutil.EnvString(&c.Timezone, "TIMEZONE")
	err := configutil.EnvBool(&c.IsProd, "IS_PROD")
	if err != nil {
		return err
	}
	return configutil.EnvInt(&c.ServicePort, "SERVICE_PORT")
}

// Load reads the .env next to path, then the json5 config at path (which may
// be missing), then lets environment variables override the file.
func Load(path string) (Config, error) {
	err := configutil.LoadDotenv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return Config{}, err
	}

	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	err = cfg.applyEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}
