package config

import (
	"github.com/spf13/viper"
	"github.com/teranos/typeshape/convention"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Logging
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")

	// Nullability: unknown keeps what the Go type says
	v.SetDefault("nullability.default_context", "unknown")
	v.SetDefault("nullability.annotation_file", "")

	// Conventions
	v.SetDefault("conventions.default_scope", convention.DefaultScope)

	// Conversion
	v.SetDefault("conversion.scalars", true)
}
