// Package config loads typeshape settings from typeshape.toml files and
// TYPESHAPE_* environment variables using Viper.
package config

// Config represents the typeshape configuration
type Config struct {
	Log         LogConfig         `mapstructure:"log" json:"log" toml:"log" yaml:"log"`
	Nullability NullabilityConfig `mapstructure:"nullability" json:"nullability" toml:"nullability" yaml:"nullability"`
	Conventions ConventionsConfig `mapstructure:"conventions" json:"conventions" toml:"conventions" yaml:"conventions"`
	Conversion  ConversionConfig  `mapstructure:"conversion" json:"conversion" toml:"conversion" yaml:"conversion"`
}

// LogConfig configures structured logging
type LogConfig struct {
	JSON  bool   `mapstructure:"json" json:"json" toml:"json" yaml:"json"`     // JSON output instead of console
	Level string `mapstructure:"level" json:"level" toml:"level" yaml:"level"` // debug, info, warn, error
}

// NullabilityConfig configures the nullability reader
type NullabilityConfig struct {
	DefaultContext string `mapstructure:"default_context" json:"default_context" toml:"default_context" yaml:"default_context"` // yes, no or unknown
	AnnotationFile string `mapstructure:"annotation_file" json:"annotation_file" toml:"annotation_file" yaml:"annotation_file"` // TOML annotation file (empty = tags only)
}

// ConventionsConfig configures convention resolution
type ConventionsConfig struct {
	DefaultScope string `mapstructure:"default_scope" json:"default_scope" toml:"default_scope" yaml:"default_scope"`
}

// ConversionConfig configures the value conversion registry
type ConversionConfig struct {
	Scalars bool `mapstructure:"scalars" json:"scalars" toml:"scalars" yaml:"scalars"` // string/number/bool/time coercion
}

// File names searched for project configuration
const (
	FileName  = "typeshape.toml"
	EnvPrefix = "TYPESHAPE"
)
