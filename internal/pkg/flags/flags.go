package flags

import "github.com/urfave/cli/v2"

// CLI flags for slotrace
var (
	Config = &cli.StringFlag{
		Name:  "config",
		Usage: "path to the YAML config file",
		Value: "config.yaml",
	}
	LogLevel = &cli.StringFlag{
		Name:  "log-level",
		Usage: "log verbosity: debug, info, warn, error (overrides config)",
	}
	LogFile = &cli.StringFlag{
		Name:  "log-file",
		Usage: "write logs to this file instead of stdout (overrides config)",
	}
	MetricsAddr = &cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "listen address for the Prometheus endpoint, e.g. ':9090' (overrides config)",
	}
	Dump = &cli.StringFlag{
		Name:  "dump",
		Usage: "write per-slot race results to this CSV file on exit",
	}
)
