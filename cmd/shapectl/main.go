package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/typeshape/cmd/shapectl/commands"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/logger"
)

var rootCmd = &cobra.Command{
	Use:   "shapectl",
	Short: "shapectl - Inspect how Go types map onto schema shapes",
	Long: `shapectl - Inspect how Go types map onto schema shapes.

shapectl runs the typeshape engine over a catalog of sample types: it shows
decomposed shapes and their nullability, inspected object members, JSON
Schema exports, value conversions and the convention build behind them.

Available commands:
  shapes      - Show shapes of the catalog types
  fields      - Show the inspected members of an object type
  schema      - Export an object type as JSON Schema
  convert     - Convert a value through the conversion registry
  conventions - Show registered and resolved conventions
  config      - Inspect configuration

Examples:
  shapectl shapes                  # Shapes of every catalog type
  shapectl fields Order -o yaml    # Members of Order
  shapectl schema Customer         # JSON Schema for Customer
  shapectl convert on --to bool    # Scalar conversion`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := commands.Setup(path)
		if err != nil {
			return err
		}

		verbosity, _ := cmd.Flags().GetCount("verbose")
		commands.Verbosity = verbosity
		jsonLog, _ := cmd.Flags().GetBool("json-log")
		level := logger.ParseLevel(cfg.Log.Level)
		if verbosity > logger.VerbosityUser {
			level = logger.VerbosityToLevel(verbosity)
		}
		if err := logger.InitializeWithLevel(jsonLog || cfg.Log.JSON, level); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().String("config", "", "Path to typeshape.toml (default: search up from the working directory)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")

	// Add commands
	rootCmd.AddCommand(commands.ShapesCmd)
	rootCmd.AddCommand(commands.FieldsCmd)
	rootCmd.AddCommand(commands.SchemaCmd)
	rootCmd.AddCommand(commands.ConvertCmd)
	rootCmd.AddCommand(commands.ConventionsCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
