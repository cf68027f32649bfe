package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/trailfield/trailfield/internal/flagx"
	"github.com/trailfield/trailfield/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	DatabaseFile        string         `json:"database_file"`
	EmailEndpoint       string         `json:"email_endpoint"`
	EmailAccessKey      string         `json:"email_access_key"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flags (flagx.JsonConfigFlags);
// without them no JSON is loaded. Read or unmarshal errors panic, so a
// misconfigured client fails loudly at startup instead of running with a
// half-applied config.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.DatabaseFile != "" {
		cfg.DatabaseFile = jc.DatabaseFile
	}
	if jc.EmailEndpoint != "" {
		cfg.EmailEndpoint = jc.EmailEndpoint
	}
	if jc.EmailAccessKey != "" {
		cfg.EmailAccessKey = jc.EmailAccessKey
	}
}
