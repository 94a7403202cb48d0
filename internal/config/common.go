// Package config loads the per-service YAML configuration for the four
// binaries in the cluster (redirector, shipgate, login, ship), following the
// teacher's load-with-defaults pattern: start from a Default*() struct, then
// overlay a YAML file if one exists, then overlay the shipgate shared secret
// (PSOSERV_SHIPGATE_SECRET) from the environment, loaded through godotenv,
// so it doesn't live in a checked-in YAML file. No other field, DSN
// settings included, is read from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL connection parameters, shared by every
// service that talks to the account/guildcard store (login and shipgate).
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns          int32  `yaml:"max_conns"`
	MinConns          int32  `yaml:"min_conns"`
	MaxConnLifetime   string `yaml:"max_conn_lifetime"`
	MaxConnIdleTime   string `yaml:"max_conn_idle_time"`
	HealthCheckPeriod string `yaml:"health_check_period"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)

	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if d.MaxConnLifetime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_lifetime=%s", d.MaxConnLifetime))
	}
	if d.MaxConnIdleTime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_idle_time=%s", d.MaxConnIdleTime))
	}
	if d.HealthCheckPeriod != "" {
		params = append(params, fmt.Sprintf("pool_health_check_period=%s", d.HealthCheckPeriod))
	}

	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

func defaultDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:    "127.0.0.1",
		Port:    5432,
		User:    "psoserv",
		Password: "psoserv",
		DBName:  "psoserv",
		SSLMode: "disable",
	}
}

// loadYAML reads path into cfg, leaving cfg untouched (so its defaults
// survive) if the file doesn't exist.
func loadYAML(path string, cfg any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// loadDotenv overlays a .env file (if present) onto the process environment.
// Missing files are not an error — most deployments set env vars directly.
func loadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
