package config

// Config holds runtime settings for the TaskKeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the auth gateway, e.g. http://localhost:8080.
//   - TokenDir: directory (relative to the working directory) where the
//     session token is cached between runs.
type Config struct {
	ServerURL string
	TokenDir  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.TokenDir = ".taskkeeper"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
