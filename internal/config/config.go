// Package config loads tinsrecipe settings from files, the environment and defaults.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for directories and the env prefix.
	AppName = "tinsrecipe"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// EnvPrefix prefixes every environment override, e.g. TINSRECIPE_CHANNEL.
	EnvPrefix = "TINSRECIPE"
)

// Supported config file extensions, in lookup order
var configFileExts = []string{"yaml", "yml", "toml"}

// Config holds every setting the CLI needs. Nothing below the CLI reads the
// environment; values are passed down explicitly.
type Config struct {
	User       string `mapstructure:"user"`
	Channel    string `mapstructure:"channel"`
	RecipesDir string `mapstructure:"recipes_dir"`
	OutputDir  string `mapstructure:"output_dir"`
	LogLevel   string `mapstructure:"log_level"`

	Signing SigningConfig `mapstructure:"signing"`
	Verify  VerifyConfig  `mapstructure:"verify"`
	CMake   CMakeConfig   `mapstructure:"cmake"`
}

// SigningConfig selects the key used to sign package archives
type SigningConfig struct {
	Key        string `mapstructure:"key"`
	Passphrase string `mapstructure:"passphrase"`
}

// VerifyConfig configures the verification harness
type VerifyConfig struct {
	Keyring     string `mapstructure:"keyring"` // file path or https URL
	Remote      string `mapstructure:"remote"`  // package store base URL
	TestPackage string `mapstructure:"test_package"`
	WorkDir     string `mapstructure:"work_dir"`
}

// CMakeConfig selects the build tools
type CMakeConfig struct {
	Command   string        `mapstructure:"command"`
	CTest     string        `mapstructure:"ctest"`
	Generator string        `mapstructure:"generator"`
	BuildType string        `mapstructure:"build_type"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// ConfigFilePath, when set, is the only file read and must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the directory searched for config.{yaml,yml,toml}.
	ConfigDirPath string
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		User:       "appanywhere",
		Channel:    "testing",
		RecipesDir: filepath.Join(xdg.DataHome, AppName, "recipes"),
		OutputDir:  "dist",
		LogLevel:   "info",
		Verify: VerifyConfig{
			TestPackage: "test_package",
		},
		CMake: CMakeConfig{
			Command:   "cmake",
			CTest:     "ctest",
			BuildType: "Release",
			Timeout:   30 * time.Minute,
		},
	}
}

// ConfigDir returns the tinsrecipe configuration directory, following the
// XDG base directory conventions of the host.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Load reads configuration with precedence env > file > defaults. It
// returns the config and the path of the file read, empty when none was.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, path, nil
}

// Validate checks values that would produce malformed references or an unusable logger
func (c *Config) Validate() error {
	identity := []struct{ field, value string }{
		{"user", c.User},
		{"channel", c.Channel},
	}
	for _, id := range identity {
		if id.value == "" {
			return fmt.Errorf("config %s must not be empty", id.field)
		}
		if strings.ContainsAny(id.value, "/@ ") {
			return fmt.Errorf("config %s %q must not contain '/', '@' or spaces", id.field, id.value)
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}

	if c.CMake.Timeout < 0 {
		return fmt.Errorf("config cmake.timeout must not be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("user", d.User)
	v.SetDefault("channel", d.Channel)
	v.SetDefault("recipes_dir", d.RecipesDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("signing.key", d.Signing.Key)
	v.SetDefault("signing.passphrase", d.Signing.Passphrase)
	v.SetDefault("verify.keyring", d.Verify.Keyring)
	v.SetDefault("verify.remote", d.Verify.Remote)
	v.SetDefault("verify.test_package", d.Verify.TestPackage)
	v.SetDefault("verify.work_dir", d.Verify.WorkDir)
	v.SetDefault("cmake.command", d.CMake.Command)
	v.SetDefault("cmake.ctest", d.CMake.CTest)
	v.SetDefault("cmake.generator", d.CMake.Generator)
	v.SetDefault("cmake.build_type", d.CMake.BuildType)
	v.SetDefault("cmake.timeout", d.CMake.Timeout)
}

func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		dir = ConfigDir()
	}

	for _, ext := range configFileExts {
		candidate := filepath.Join(dir, ConfigFileName+"."+ext)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	// No config file is fine; defaults and env apply
	return "", nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
