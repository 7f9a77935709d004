package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/flagx"
)

// parseFlags populates selected client Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   server base URL (e.g., "http://127.0.0.1:8080")
//	-d string   local SQLite database path
//	-o int      online check interval, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerURL, "a", config.ServerURL, "server base URL")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "local database path")

	onlineCheckInterval := fs.Int("o", int(config.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
