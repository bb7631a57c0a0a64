package config

import (
	"encoding/json"
	"os"
	"time"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. The session
// lifetime is accepted as a duration string like "12h".
type jsonConfig struct {
	Address    string `json:"address"`
	DataDir    string `json:"data_dir"`
	SecretKey  string `json:"secret_key"`
	SessionTTL string `json:"session_ttl"`
}

// parseJSON overlays Config with values loaded from the JSON file named by
// the -c/-config flag. With no flag, nothing is loaded.
func parseJSON(cfg *Config) {
	path := configFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Address != "" {
		cfg.Address = jc.Address
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.SessionTTL != "" {
		d, err := time.ParseDuration(jc.SessionTTL)
		if err != nil {
			panic(err)
		}
		cfg.SessionTTL = d
	}
}
