// Package config loads engine configuration from an optional yaml file
// with environment variable overrides. Everything downstream receives its
// configuration at construction; nothing reads the environment later.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Events    EventsConfig    `koanf:"events"`
	Analytics AnalyticsConfig `koanf:"analytics"`
}

type ServerConfig struct {
	Port int `koanf:"port"`

	// RequestTimeoutSeconds bounds each report request end to end.
	RequestTimeoutSeconds int `koanf:"request_timeout_seconds"`
}

type CatalogConfig struct {
	// Path is the sqlite database file holding the organizational
	// hierarchy and pricing tables.
	Path string `koanf:"path"`
}

type EventsConfig struct {
	// Path is the badger directory of the partitioned event store.
	Path string `koanf:"path"`

	// InMemory runs the event store without a backing directory. Local
	// development only.
	InMemory bool `koanf:"in_memory"`

	// FanOut caps concurrent partition scans per query.
	FanOut int `koanf:"fan_out"`

	// PageSize is the per-partition scan page size.
	PageSize int `koanf:"page_size"`
}

type AnalyticsConfig struct {
	// MaxWindowDays caps the queryable time window. Zero means no cap.
	MaxWindowDays int `koanf:"max_window_days"`

	// MaxRecords bounds each logical event query. Zero applies the
	// client default.
	MaxRecords int `koanf:"max_records"`
}

// Load reads configPath (yaml, optional) and applies INSIGHTS_ prefixed
// environment overrides; "__" in a variable name separates nesting, so
// INSIGHTS_SERVER__PORT sets server.port.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	if err := k.Load(env.Provider("INSIGHTS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "INSIGHTS_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	defaults := map[string]any{
		"server.port":                    8085,
		"server.request_timeout_seconds": 30,
		"catalog.path":                   "data/catalog.db",
		"events.path":                    "data/events",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, value); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
