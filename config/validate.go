package config

import (
	"os"
	"strings"

	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/shape"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WithHint(
			errors.Newf("log.level %q is not a log level", c.Log.Level),
			"use debug, info, warn or error")
	}

	if _, ok := shape.ParseNullability(c.Nullability.DefaultContext); !ok {
		return errors.WithHint(
			errors.Newf("nullability.default_context %q is not a nullability", c.Nullability.DefaultContext),
			"use yes, no or unknown")
	}

	// Annotation file is optional; when set it must exist
	if path := c.Nullability.AnnotationFile; path != "" {
		if _, err := os.Stat(path); err != nil {
			return errors.Wrapf(err, "nullability.annotation_file %s", path)
		}
	}

	if strings.TrimSpace(c.Conventions.DefaultScope) == "" {
		return errors.New("conventions.default_scope cannot be empty")
	}
	return nil
}

// DefaultContext returns the parsed nullability.default_context.
func (c *Config) DefaultContext() shape.Nullability {
	n, _ := shape.ParseNullability(c.Nullability.DefaultContext)
	return n
}
