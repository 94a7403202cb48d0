package config

import "github.com/sylverant/psoserv/internal/constants"

// Ship holds configuration for one ship process: its blocks and the one
// shipgate link it keeps open (spec.md §4.5). Account database access
// belongs to the Shipgate alone; the ship only ever forwards requests over
// its shipgate session (spec.md §4.5's "ownership of one shipgate session").
type Ship struct {
	ShipID   int    `yaml:"ship_id"`
	ShipName string `yaml:"ship_name"`

	BindAddress string `yaml:"bind_address"`
	// VariantPorts is the ship's lobby-select entry point: one connection
	// port per variant (spec.md §6), mirroring the login service's per-kind
	// listener set. A client lands here immediately after the login
	// service's redirect and re-presents its credentials (block ID 0).
	VariantPorts RedirectorPorts `yaml:"variant_ports"`
	// Blocks lists one per-variant port set per game block — spec.md §6's
	// "one port per block plus one connection port per variant" read as a
	// block axis crossed with the variant axis, the same way the real
	// client reconnects to a block: on the same wire framing it arrived
	// with, at a block-specific port. Block/lobby gameplay itself is out of
	// scope (spec.md §1's non-goals); these listeners exist only to accept
	// the reconnection and keep the framing/login-rebind/bug-report/forward
	// aspects spec.md does name working after a block switch.
	Blocks []RedirectorPorts `yaml:"blocks"`

	ShipgateHost string `yaml:"shipgate_host"`
	ShipgatePort int    `yaml:"shipgate_port"`
	SharedSecret string `yaml:"-"`

	// BugReportDir is where mail-to-staff bug reports from every client
	// variant are written; PC reports are transcoded first (spec.md §4.5's
	// bug-report capture).
	BugReportDir string `yaml:"bug_report_dir"`
	// QuestDir is the root of the reloadable category -> quest-id catalog.
	QuestDir string `yaml:"quest_dir"`

	LogLevel string `yaml:"log_level"`
}

// DefaultShip returns Ship config with a single default block.
func DefaultShip() Ship {
	return Ship{
		ShipID:       1,
		ShipName:     "Ragol",
		BindAddress: "0.0.0.0",
		VariantPorts: RedirectorPorts{
			DCv1: constants.ShipPortDCv1,
			DCv2: constants.ShipPortDCv2,
			PC:   constants.ShipPortPC,
			GC:   constants.ShipPortGC,
			GC1:  constants.ShipPortGC1,
			GC2:  constants.ShipPortGC2,
		},
		Blocks: []RedirectorPorts{
			{
				DCv1: constants.ShipPortDCv1 + 100,
				DCv2: constants.ShipPortDCv2 + 100,
				PC:   constants.ShipPortPC + 100,
				GC:   constants.ShipPortGC + 100,
				GC1:  constants.ShipPortGC1 + 100,
				GC2:  constants.ShipPortGC2 + 100,
			},
		},
		ShipgateHost: "127.0.0.1",
		ShipgatePort: 3726,
		BugReportDir: "bugs",
		QuestDir:     "quests",
		LogLevel:     "info",
	}
}

// LoadShip loads ship config from a YAML file and overlays the shared
// secret from the environment.
func LoadShip(path, envPath string) (Ship, error) {
	cfg := DefaultShip()
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := loadDotenv(envPath); err != nil {
		return cfg, err
	}
	cfg.SharedSecret = envOrDefault("PSOSERV_SHIPGATE_SECRET", cfg.SharedSecret)
	return cfg, nil
}
