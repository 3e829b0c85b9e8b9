// Package engine provides StorageEngine implementations for substate
// Models: an in-memory reference engine and a BadgerDB-backed persistent
// engine, plus environment-variable driven tuning for both.
package engine

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config tunes a StorageEngine's retention policy and on-disk behavior.
// Load one from the environment with LoadFromEnv, from a YAML file with
// LoadConfig, then Validate it before constructing an engine.
type Config struct {
	// MaxSteps is the retention window: the number of committed steps an
	// engine guarantees to keep reachable via undo. Env SUBSTATE_MAX_STEPS,
	// default 1000. Must be >= 4.
	MaxSteps int `yaml:"max_steps"`

	// ChecksumEnabled gates per-step blake2b-256 integrity checksums in
	// BadgerStorageEngine. Env SUBSTATE_CHECKSUM_ENABLED, default true.
	ChecksumEnabled bool `yaml:"checksum_enabled"`

	// DataDir is the directory BadgerStorageEngine stores its database in.
	// Env SUBSTATE_DATA_DIR, default "./substate-data".
	DataDir string `yaml:"data_dir"`
}

// DefaultConfig returns the configuration LoadFromEnv falls back to when no
// environment variables are set.
func DefaultConfig() Config {
	return Config{
		MaxSteps:        1000,
		ChecksumEnabled: true,
		DataDir:         "./substate-data",
	}
}

// LoadFromEnv builds a Config from SUBSTATE_* environment variables,
// falling back to DefaultConfig's values for anything unset or unparsable.
func LoadFromEnv() Config {
	c := DefaultConfig()
	c.MaxSteps = getEnvInt("SUBSTATE_MAX_STEPS", c.MaxSteps)
	c.ChecksumEnabled = getEnvBool("SUBSTATE_CHECKSUM_ENABLED", c.ChecksumEnabled)
	c.DataDir = getEnvString("SUBSTATE_DATA_DIR", c.DataDir)
	return c
}

// LoadConfig reads a YAML configuration file, falling back to
// DefaultConfig's values for any field left unset in the file.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("substate: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("substate: parse config %s: %w", path, err)
	}
	return c, nil
}

// LoadConfigOrDefault loads a YAML config file, returning DefaultConfig if
// the file is missing or unreadable rather than propagating an error.
func LoadConfigOrDefault(path string) Config {
	c, err := LoadConfig(path)
	if err != nil {
		return DefaultConfig()
	}
	return c
}

// Validate rejects a MaxSteps below the §4.10 floor of 4.
func (c Config) Validate() error {
	if c.MaxSteps < 4 {
		return fmt.Errorf("substate: max_steps must be >= 4, got %d", c.MaxSteps)
	}
	if c.DataDir == "" {
		return fmt.Errorf("substate: data_dir must not be empty")
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultVal
}
