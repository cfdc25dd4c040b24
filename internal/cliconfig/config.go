package cliconfig

// Defaults.
const (
	DefaultPort          = 3000
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultMaxLogEntries = 1000
)

// Value sources, used to explain where a setting came from.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Config holds the fixture server settings.
type Config struct {
	Host          string
	Port          int
	LogLevel      string
	LogFormat     string
	CatalogFile   string
	MaxLogEntries int

	// Sources maps a setting name to where its value came from.
	Sources map[string]string
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Port:          DefaultPort,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		MaxLogEntries: DefaultMaxLogEntries,
		Sources: map[string]string{
			"host":          SourceDefault,
			"port":          SourceDefault,
			"logLevel":      SourceDefault,
			"logFormat":     SourceDefault,
			"catalog":       SourceDefault,
			"maxLogEntries": SourceDefault,
		},
	}
}

// Load returns defaults overridden by the process environment.
func Load() *Config {
	cfg := New()
	LoadEnvConfig(cfg)
	return cfg
}
