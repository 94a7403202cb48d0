package config

import "github.com/sylverant/psoserv/internal/constants"

// Redirector holds configuration for the redirector service. The redirector
// itself never touches the database or the shipgate link — it only needs to
// know where to point incoming clients (spec.md §6).
type Redirector struct {
	BindAddress string `yaml:"bind_address"`

	// TargetHost is the login service's address, sent as the ip_addr field
	// of every redirect packet. cmd/redirector overwrites it with the
	// required -S flag's value after loading the file.
	TargetHost string `yaml:"target_host"`

	// Ports mirrors the login service's listening ports. Defaults match the
	// well-known PSO ports and rarely need overriding.
	Ports RedirectorPorts `yaml:"ports"`

	LogLevel string `yaml:"log_level"`
}

// RedirectorPorts lists every port the redirector listens on and the port
// on TargetHost each one redirects to.
type RedirectorPorts struct {
	DCv1 int `yaml:"dc_v1"`
	DCv2 int `yaml:"dc_v2"`
	PC   int `yaml:"pc"`
	GC   int `yaml:"gc"`
	GC1  int `yaml:"gc1"`
	GC2  int `yaml:"gc2"`
}

// DefaultRedirector returns Redirector config with the well-known PSO ports.
func DefaultRedirector() Redirector {
	return Redirector{
		BindAddress: "0.0.0.0",
		TargetHost:  "127.0.0.1",
		Ports: RedirectorPorts{
			DCv1: constants.PortDCv1,
			DCv2: constants.PortDCv2,
			PC:   constants.PortPC,
			GC:   constants.PortGC,
			GC1:  constants.PortGC1,
			GC2:  constants.PortGC2,
		},
		LogLevel: "info",
	}
}

// LoadRedirector loads redirector config from a YAML file, falling back to
// defaults for anything the file doesn't set (or if the file is absent).
func LoadRedirector(path string) (Redirector, error) {
	cfg := DefaultRedirector()
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
