// Package config loads and defaults the server's tuning parameters,
// following the teacher's two-layer pattern: sensible defaults overlaid by
// an optional YAML file, with CLI flags (parsed in cmd/tankserver) taking
// final precedence.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable parameter of the tank duel server.
type Config struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	KeyLog      bool   `yaml:"keylog"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Asset directories, relative to the working directory unless absolute.
	TanksDir          string `yaml:"tanks_dir"`
	MapsDir           string `yaml:"maps_dir"`
	MapObjectsBodies  string `yaml:"map_objects_bodies"`
	TanksBodies       string `yaml:"tanks_bodies"`
	BulletsBodies     string `yaml:"bullets_bodies"`

	// Certificate cache directory; a self-signed cert for localhost and
	// tank_wars is generated here if absent.
	CertCacheDir string `yaml:"cert_cache_dir"`

	// Node id for this process's snowflake id generator; distinct server
	// instances must be given distinct values.
	NodeID int64 `yaml:"node_id"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns int32 `yaml:"max_conns"`
}

// DSN returns the PostgreSQL connection string for the configured database.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", d.MaxConns)
	}
	return dsn
}

// Default returns Config with sensible defaults, matching spec.md's CLI
// surface (--port default 51875, --keylog default false).
func Default() Config {
	return Config{
		BindAddress:      "0.0.0.0",
		Port:             51875,
		KeyLog:           false,
		LogLevel:         "info",
		TanksDir:         "Tanks",
		MapsDir:          "Maps",
		MapObjectsBodies: "Maps/MapObjects/MapObjects.polygons",
		TanksBodies:      "Tanks/TanksBodies.polygons",
		BulletsBodies:    "Tanks/Bullets.polygons",
		CertCacheDir:     ".",
		NodeID:           1,
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "tankwars",
			Password: "tankwars",
			DBName:  "tankwars",
			SSLMode: "disable",
		},
	}
}

// Load reads a YAML file overlaying Default(). A missing file is not an
// error — the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
