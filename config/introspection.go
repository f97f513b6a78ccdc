package config

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Source represents where a configuration value came from
type Source string

const (
	SourceDefault     Source = "default"
	SourceFile        Source = "file"        // typeshape.toml
	SourceEnvironment Source = "environment" // TYPESHAPE_* env vars
)

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string `json:"key"`
	Value      any    `json:"value"`
	Source     Source `json:"source"`
	SourcePath string `json:"source_path,omitempty"` // File path or env var name
}

// Settings lists every effective setting of v with its source, sorted by key.
func Settings(v *viper.Viper) []SettingInfo {
	keys := v.AllKeys()
	sort.Strings(keys)

	out := make([]SettingInfo, 0, len(keys))
	for _, key := range keys {
		info := SettingInfo{Key: key, Value: v.Get(key), Source: SourceDefault}
		if v.InConfig(key) {
			info.Source = SourceFile
			info.SourcePath = v.ConfigFileUsed()
		}
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, ok := os.LookupEnv(envKey); ok {
			info.Source = SourceEnvironment
			info.SourcePath = envKey
		}
		out = append(out, info)
	}
	return out
}

// LoadViper is Load returning the Viper instance, for introspection.
func LoadViper(path string) (*viper.Viper, error) {
	v := NewViper()
	if path == "" {
		path = findProjectConfig()
	}
	if path != "" {
		if err := mergeFile(v, path); err != nil {
			return nil, err
		}
	}
	return v, nil
}
