package config

// Shipgate holds configuration for the shipgate federation service: the
// single process every ship dials out to (spec.md §4.4).
type Shipgate struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// SharedSecret seeds the RC4 key derivation for every ship link
	// (spec.md §4.4). Loaded from PSOSERV_SHIPGATE_SECRET via .env/env,
	// never written to the checked-in YAML.
	SharedSecret string `yaml:"-"`

	// Database backs GMLOGIN cross-ship account lookups.
	Database DatabaseConfig `yaml:"database"`

	LogLevel string `yaml:"log_level"`
}

// DefaultShipgate returns Shipgate config with sensible defaults.
func DefaultShipgate() Shipgate {
	return Shipgate{
		BindAddress: "0.0.0.0",
		Port:        3726,
		Database:    defaultDatabase(),
		LogLevel:    "info",
	}
}

// LoadShipgate loads shipgate config from a YAML file and overlays the
// shared secret from the environment.
func LoadShipgate(path, envPath string) (Shipgate, error) {
	cfg := DefaultShipgate()
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := loadDotenv(envPath); err != nil {
		return cfg, err
	}
	cfg.SharedSecret = envOrDefault("PSOSERV_SHIPGATE_SECRET", cfg.SharedSecret)
	return cfg, nil
}
