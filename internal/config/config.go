package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alexjbarnes/coaclient/internal/store"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for coaclient.
type Config struct {
	// Storage root. Defaults to ~/.coursera when empty.
	Home string `env:"COACLIENT_HOME"`

	// File names inside the storage root.
	ConfigFile      string `env:"COACLIENT_CONFIG_FILE" envDefault:"coaclient.csv"`
	TokenFileSuffix string `env:"COACLIENT_TOKEN_SUFFIX" envDefault:"_aout2.csv"`

	// Delete every config line containing the client name, as older
	// releases did, instead of matching the name column only.
	LegacySubstringDelete bool `env:"COACLIENT_LEGACY_DELETE" envDefault:"false"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Home == "" {
		home, err := DefaultHome()
		if err != nil {
			return nil, err
		}

		cfg.Home = home
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	absHome, err := filepath.Abs(cfg.Home)
	if err != nil {
		return nil, fmt.Errorf("resolving home to absolute path: %w", err)
	}

	cfg.Home = absHome

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ConfigFile == "" {
		return fmt.Errorf("COACLIENT_CONFIG_FILE must not be empty")
	}

	if strings.ContainsAny(c.ConfigFile, `/\`) {
		return fmt.Errorf("COACLIENT_CONFIG_FILE must be a file name, got %q", c.ConfigFile)
	}

	if c.TokenFileSuffix == "" {
		return fmt.Errorf("COACLIENT_TOKEN_SUFFIX must not be empty")
	}

	if strings.ContainsAny(c.TokenFileSuffix, `/\`) {
		return fmt.Errorf("COACLIENT_TOKEN_SUFFIX must not contain path separators, got %q", c.TokenFileSuffix)
	}

	if c.TokenFileSuffix == c.ConfigFile {
		return fmt.Errorf("COACLIENT_TOKEN_SUFFIX and COACLIENT_CONFIG_FILE must differ")
	}

	return nil
}

// DefaultHome returns the default storage root: ~/.coursera/
func DefaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, store.DefaultDirName), nil
}

// StoreOptions maps the configuration onto the store layout.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Root:                  c.Home,
		ConfigFile:            c.ConfigFile,
		TokenFileSuffix:       c.TokenFileSuffix,
		LegacySubstringDelete: c.LegacySubstringDelete,
	}
}
