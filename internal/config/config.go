// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port is the TCP port the HTTP server listens on.
	Port string

	// DataDir is the directory holding accounts.json, config.json,
	// the audit log and the per-account key files.
	DataDir string

	// StaticDir is the directory served at / (the browser UI).
	StaticDir string

	// AllowedOrigins is a comma-separated CORS origin list.
	AllowedOrigins string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "p", "3000", "port to listen on")
	flag.StringVar(&options.DataDir, "data", "data", "data directory")
	flag.StringVar(&options.StaticDir, "static", "public", "static assets directory")
	flag.StringVar(&options.AllowedOrigins, "origins", "*", "allowed CORS origins")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	_ = godotenv.Load()
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		options.Port = port
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		options.DataDir = dataDir
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		options.AllowedOrigins = origins
	}

	return options
}
