// Package config handles configuration loading and management
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	// DefaultEnvFile is loaded when no env file is given; its absence is not an error.
	DefaultEnvFile = ".env"
	// DefaultLogLevel keeps a normal run quiet on stderr.
	DefaultLogLevel = "warn"
)

// Config holds the ambient configuration loaded from environment variables.
// None of it changes report content.
type Config struct {
	EnvFile  string
	LogLevel string
	NoColor  bool

	// EnvFileErr is set when the default env file exists but could not be loaded.
	// It is reported as a warning; only an explicit env file is fatal.
	EnvFileErr error
}

// Load reads configuration from environment variables and an env file.
// An empty envFile means DefaultEnvFile, which may be missing or unreadable.
func Load(envFile string) (*Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	var envFileErr error

	if err := godotenv.Load(envFile); err != nil {
		envFileErr = fmt.Errorf("failed to load env file '%s': %w", envFile, err)

		if explicit {
			return nil, envFileErr
		}

		// It's okay if the default file doesn't exist
		if os.IsNotExist(err) {
			envFileErr = nil
		}
	}

	cfg := &Config{
		EnvFile:    envFile,
		LogLevel:   getEnv("LOG_LEVEL", DefaultLogLevel),
		NoColor:    os.Getenv("NO_COLOR") != "",
		EnvFileErr: envFileErr,
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) String() string {
	colorDisplay := "auto"
	if c.NoColor {
		colorDisplay = "disabled"
	}

	return fmt.Sprintf(`Current Configuration:
======================
Env File:  %s
Log Level: %s
Colors:    %s`,
		c.EnvFile,
		c.LogLevel,
		colorDisplay,
	)
}
