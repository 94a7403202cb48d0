package config

import "github.com/sylverant/psoserv/internal/constants"

// Login holds configuration for the login service, which speaks DC v1, DC
// v2/PC, and GC auth on six ports (spec.md §4.2/§4.3) and maintains one
// outbound shipgate link to learn the current ship roster.
type Login struct {
	BindAddress string          `yaml:"bind_address"`
	Ports       RedirectorPorts `yaml:"ports"`

	Database DatabaseConfig `yaml:"database"`

	ShipgateHost string `yaml:"shipgate_host"`
	ShipgatePort int    `yaml:"shipgate_port"`
	// SharedSecret must match the shipgate's, for RC4 key derivation.
	SharedSecret string `yaml:"-"`

	AutoCreateAccounts bool `yaml:"auto_create_accounts"`
	LoginTryBeforeBan  int  `yaml:"login_try_before_ban"`
	LoginBlockSeconds  int  `yaml:"login_block_seconds"`

	LogLevel string `yaml:"log_level"`
}

// DefaultLogin returns Login config with sensible defaults.
func DefaultLogin() Login {
	return Login{
		BindAddress: "0.0.0.0",
		Ports: RedirectorPorts{
			DCv1: constants.PortDCv1,
			DCv2: constants.PortDCv2,
			PC:   constants.PortPC,
			GC:   constants.PortGC,
			GC1:  constants.PortGC1,
			GC2:  constants.PortGC2,
		},
		Database:           defaultDatabase(),
		ShipgateHost:        "127.0.0.1",
		ShipgatePort:        3726,
		AutoCreateAccounts:  true,
		LoginTryBeforeBan:   constants.DefaultLoginTryBeforeBan,
		LoginBlockSeconds:   constants.DefaultLoginBlockSeconds,
		LogLevel:            "info",
	}
}

// LoadLogin loads login config from a YAML file and overlays the shared
// secret from the environment.
func LoadLogin(path, envPath string) (Login, error) {
	cfg := DefaultLogin()
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := loadDotenv(envPath); err != nil {
		return cfg, err
	}
	cfg.SharedSecret = envOrDefault("PSOSERV_SHIPGATE_SECRET", cfg.SharedSecret)
	return cfg, nil
}
