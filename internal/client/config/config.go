// Package config handles configuration for the terminal chat client.
package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/chathub/internal/flagx"
)

// Config holds runtime settings for the chat client.
type Config struct {
	// ServerAddr is the base URL of the HTTP API, e.g. "http://localhost:8080".
	ServerAddr string
	// Name overrides the display name used in chat; empty means the account name.
	Name string
}

func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://localhost:8080"
}

// parseEnv overlays values from the environment. A .env file in the working
// directory is loaded first, without overriding existing variables.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("CHATHUB_ADDRESS"); v != "" {
		config.ServerAddr = v
	}
	if v := os.Getenv("CHATHUB_NAME"); v != "" {
		config.Name = v
	}
}

// parseFlags recognizes:
//
//	-a string   server base URL
//	-n string   display name
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-n"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&config.ServerAddr, "a", config.ServerAddr, "server base URL")
	fs.StringVar(&config.Name, "n", config.Name, "display name")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

// LoadConfig builds a Config from defaults, environment and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
