package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/typeshape/config"
	"github.com/teranos/typeshape/errors"
	"gopkg.in/yaml.v3"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect shapectl configuration",
	Long: `Display and check the shapectl configuration.

Configuration sources (in order of precedence):
1. Environment variables (TYPESHAPE_* prefix)
2. Project config (./typeshape.toml, searched up from the working directory)
3. Default values

Examples:
  shapectl config show                # Show effective configuration
  shapectl config show --format json  # Show configuration as JSON
  shapectl config sources             # Show where each setting came from
  shapectl config validate            # Validate configuration`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show where each setting is loaded from",
	RunE:  runConfigSources,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runConfigValidate,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSourcesCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func loadedConfig() (*config.Config, error) {
	if current != nil {
		return current, nil
	}
	return Setup("")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# shapectl configuration\n%s", data)
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# shapectl configuration\n%s", data)
	default:
		return errors.WithHint(
			errors.Newf("unsupported format: %s", configFormat),
			"supported formats: toml, json, yaml")
	}
	return nil
}

func runConfigSources(cmd *cobra.Command, _ []string) error {
	if _, err := loadedConfig(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if configPath != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", configPath)
	} else {
		fmt.Fprintf(out, "No %s found, using defaults and environment\n\n", config.FileName)
	}

	settings := config.Settings(currentViper)
	rows := make([][]string, len(settings))
	for i, s := range settings {
		rows[i] = []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath}
	}
	return printTable(out, []string{"Key", "Value", "Source", "From"}, rows)
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}
