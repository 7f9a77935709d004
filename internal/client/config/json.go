package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/flagx"
	"github.com/dmitrijs2005/moodnotes/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "3s" and integer nanoseconds.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	DatabaseDSN         string         `json:"database_dsn"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SignInSettleDelay   timex.Duration `json:"sign_in_settle_delay"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.ServerURL = c.ServerURL
	config.DatabaseDSN = c.DatabaseDSN
	config.OnlineCheckInterval = time.Duration(c.OnlineCheckInterval.Duration)
	config.SignInSettleDelay = time.Duration(c.SignInSettleDelay.Duration)
}
