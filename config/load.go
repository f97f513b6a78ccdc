package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/teranos/typeshape/errors"
)

// Load reads configuration from defaults, the nearest typeshape.toml found
// walking up from the working directory, and TYPESHAPE_* environment
// variables, in increasing precedence.
func Load() (*Config, error) {
	v, err := LoadViper("")
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadFromFile loads configuration from a specific file path. Environment
// variables still override file values.
func LoadFromFile(path string) (*Config, error) {
	v := NewViper()
	if err := mergeFile(v, path); err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// NewViper returns a Viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func mergeFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return errors.WithHintf(
			errors.Wrapf(err, "failed to read config file %s", path),
			"check that %s is valid TOML", filepath.Base(path))
	}
	return nil
}

// findProjectConfig walks up from the working directory looking for
// typeshape.toml. Returns "" when none is found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
