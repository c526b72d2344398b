// Package config loads the declarative race configuration: the list of
// competing streams plus the race parameters.
package config

// Stream describes one competing slot feed endpoint.
type Stream struct {
	Name        string `koanf:"name"`
	Endpoint    string `koanf:"endpoint"`
	AccessToken string `koanf:"access_token"`
}

// Config contains process configuration.
type Config struct {
	// Streams lists the competing feeds. At least one is required.
	Streams []Stream `koanf:"streams"`

	// MaxSlots bounds the race ledger.
	MaxSlots int `koanf:"max_slots"`

	// StopAtMax freezes the ledger at capacity instead of evicting the
	// oldest slot, and ends the process once it fills up.
	StopAtMax bool `koanf:"stop_at_max"`

	// Commitment filters slot notifications: processed, confirmed or finalized.
	Commitment string `koanf:"commitment"`

	// WarmupSlots is the configured number of initial slots to treat as
	// cold-start noise.
	WarmupSlots int `koanf:"warmup_slots"`

	// ReportInterval is the summary cadence in seconds.
	ReportInterval int `koanf:"report_interval"`

	// MetricsAddr enables the Prometheus endpoint when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile redirects logs from stdout to a file when non-empty.
	LogFile string `koanf:"log_file"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		MaxSlots:       360,
		StopAtMax:      false,
		Commitment:     "processed",
		WarmupSlots:    10,
		ReportInterval: 30,
		LogLevel:       "info",
	}
}
