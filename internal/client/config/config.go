package config

import "time"

// Config holds runtime settings for the field client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the sync server API.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DatabaseFile: path of the local queue database.
//   - EmailEndpoint: template-mail dispatch endpoint; empty disables the
//     email backup channel.
//   - EmailAccessKey: bearer key for the mail endpoint.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	DatabaseFile        string
	EmailEndpoint       string
	EmailAccessKey      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabaseFile = "trailfield.db"
	c.EmailEndpoint = ""
	c.EmailAccessKey = ""
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
