// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package config handles application configuration: reading and writing the
// YAML config file, applying .env and environment overrides, and resolving
// where the account and script-source files live.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is the deployment endpoint used when none is configured.
	DefaultAPIURL = "https://api.cflifetime.workers.dev/"

	// DefaultScriptURL seeds the script-source collection on first run.
	DefaultScriptURL = "https://raw.githubusercontent.com/vapaxemu/cli/refs/heads/main/worker.js"

	DefaultTimeoutSeconds = 30
	DefaultAccountsFile   = "accounts.json"
	DefaultScriptsFile    = "github_urls.json"
)

// Config represents the top-level application configuration.
type Config struct {
	// APIURL is the remote deployment endpoint
	APIURL string `yaml:"api_url"`

	// TimeoutSeconds bounds each deployment call
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// DataDir is where the JSON record files are kept (empty means the working directory)
	DataDir string `yaml:"data_dir,omitempty"`

	AccountsFile string `yaml:"accounts_file"`
	ScriptsFile  string `yaml:"scripts_file"`

	// DefaultScriptURL is used to seed the script sources and as the last-resort fallback
	DefaultScriptURL string `yaml:"default_script_url"`

	LogLevel string `yaml:"log_level"`

	// DisableProgressUI forces plain line output for bulk runs even on a terminal
	DisableProgressUI bool `yaml:"disable_progress_ui,omitempty"`
}

// Defaults returns the configuration used when no config file exists.
func Defaults() Config {
	return Config{
		APIURL:           DefaultAPIURL,
		TimeoutSeconds:   DefaultTimeoutSeconds,
		AccountsFile:     DefaultAccountsFile,
		ScriptsFile:      DefaultScriptsFile,
		DefaultScriptURL: DefaultScriptURL,
		LogLevel:         "info",
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "cf-worker-cli", "config.yaml"), nil
}

// Load reads the config file at path, or at DefaultConfigPath when path is
// empty. A missing file yields Defaults(). Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

// LoadConfig loads the config file, then applies ./.env and CFW_* environment
// overrides, and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}

	if err := LoadDotEnv(".env"); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a dotenv file if it exists. Variables that
// are already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from CFW_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("CFW_API_URL"); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := os.LookupEnv("CFW_DATA_DIR"); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := os.LookupEnv("CFW_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("CFW_TIMEOUT_SECONDS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CFW_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.TimeoutSeconds = n
	}
	return nil
}

// Validate reports configuration values the application cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an http(s) URL", c.APIURL)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid timeout_seconds %d: must be positive", c.TimeoutSeconds)
	}
	return nil
}

func (c *Config) fillDefaults() {
	d := Defaults()
	if c.APIURL == "" {
		c.APIURL = d.APIURL
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.AccountsFile == "" {
		c.AccountsFile = d.AccountsFile
	}
	if c.ScriptsFile == "" {
		c.ScriptsFile = d.ScriptsFile
	}
	if c.DefaultScriptURL == "" {
		c.DefaultScriptURL = d.DefaultScriptURL
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Timeout returns the per-call deployment deadline.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AccountsPath returns the absolute path of the accounts file.
func (c Config) AccountsPath() (string, error) {
	return c.dataPath(c.AccountsFile)
}

// ScriptsPath returns the absolute path of the script-source file.
func (c Config) ScriptsPath() (string, error) {
	return c.dataPath(c.ScriptsFile)
}

func (c Config) dataPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir, err := ResolvePath(c.DataDir)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Abs(filepath.Join(dir, name))
}

func EnsureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	err := os.MkdirAll(configDir, 0750) // rwxr-x---
	if err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}
	return nil
}

// Save writes cfg to path, or to DefaultConfigPath when path is empty.
func Save(path string, cfg Config) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	if err := EnsureConfigDir(path); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// Write with permissions rw-r----- (0640)
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path, fmt.Errorf("could not get user home directory to resolve path '%s': %w", path, err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}
