package cliconfig

import (
	"os"
	"strconv"
)

// Environment variable names. HTTP_SERVER_PORT is the name client test
// suites already export, so it carries no prefix.
const (
	EnvPort          = "HTTP_SERVER_PORT"
	EnvHost          = "RETRYFIXTURE_HOST"
	EnvLogLevel      = "RETRYFIXTURE_LOG_LEVEL"
	EnvLogFormat     = "RETRYFIXTURE_LOG_FORMAT"
	EnvCatalog       = "RETRYFIXTURE_CATALOG"
	EnvMaxLogEntries = "RETRYFIXTURE_MAX_LOG_ENTRIES"
)

// LoadEnvConfig applies environment variables to cfg. Only variables that
// are set and parse cleanly change cfg, so an unparsable port keeps the
// default.
func LoadEnvConfig(cfg *Config) {
	LoadEnvConfigFrom(cfg, os.Getenv)
}

// LoadEnvConfigFrom is LoadEnvConfig with an injectable lookup.
func LoadEnvConfigFrom(cfg *Config, getenv func(string) string) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	// HTTP_SERVER_PORT
	if v := getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && ValidPort(port) {
			cfg.Port = port
			cfg.Sources["port"] = SourceEnv
		}
	}

	// RETRYFIXTURE_HOST
	if v := getenv(EnvHost); v != "" {
		cfg.Host = v
		cfg.Sources["host"] = SourceEnv
	}

	// RETRYFIXTURE_LOG_LEVEL
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}

	// RETRYFIXTURE_LOG_FORMAT
	if v := getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = SourceEnv
	}

	// RETRYFIXTURE_CATALOG
	if v := getenv(EnvCatalog); v != "" {
		cfg.CatalogFile = v
		cfg.Sources["catalog"] = SourceEnv
	}

	// RETRYFIXTURE_MAX_LOG_ENTRIES
	if v := getenv(EnvMaxLogEntries); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxLogEntries = n
			cfg.Sources["maxLogEntries"] = SourceEnv
		}
	}
}

// ValidPort reports whether port can be bound. Zero asks for a free port.
func ValidPort(port int) bool {
	return port >= 0 && port <= 65535
}
