package commands

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/typeshape/cmd/shapectl/catalog"
	"github.com/teranos/typeshape/config"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/shape"
)

// ShapesCmd represents the shapes command
var ShapesCmd = &cobra.Command{
	Use:   "shapes [name...]",
	Short: "Show the shapes of the sample catalog types",
	Long: `Decompose each catalog type and show its shape in schema notation, its
node structure and the nullability of each logical layer.

Types no strategy can decompose are shown with their opaque fallback shape.

Examples:
  shapectl shapes                      # all catalog types
  shapectl shapes '[3]int' 'Page[Order]'
  shapectl shapes --output yaml
  shapectl shapes --watch              # re-render when typeshape.toml changes`,
	RunE: runShapes,
}

var (
	shapesOutput string
	shapesWatch  bool
)

func init() {
	ShapesCmd.Flags().StringVarP(&shapesOutput, "output", "o", formatTable, "Output format: table, json, yaml")
	ShapesCmd.Flags().BoolVarP(&shapesWatch, "watch", "w", false, "Re-render when the configuration or annotation file changes")
}

// ShapeReport describes one inspected type.
type ShapeReport struct {
	Name        string `json:"name"`
	GoType      string `json:"goType"`
	Shape       string `json:"shape"`
	Structure   string `json:"structure"`
	Nullability []bool `json:"nullability"`
	TypeName    string `json:"typeName"`
}

func runShapes(cmd *cobra.Command, args []string) error {
	if err := printShapes(cmd, args); err != nil {
		return err
	}
	if !shapesWatch {
		return nil
	}
	if configPath == "" {
		return errors.WithHint(
			errors.New("--watch needs a configuration file"),
			"create typeshape.toml or pass --config")
	}

	w, err := config.NewWatcher(configPath)
	if err != nil {
		return err
	}
	w.OnReload(func(cfg *config.Config) error {
		current = cfg
		pterm.Info.Printfln("Reloaded %s", configPath)
		return printShapes(cmd, args)
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	pterm.Info.Printfln("Watching %s (Ctrl+C to stop)", configPath)
	return w.Run(ctx)
}

func printShapes(cmd *cobra.Command, names []string) error {
	reports, err := shapeReports(names)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), shapesOutput, reports, func() error {
		rows := make([][]string, len(reports))
		for i, r := range reports {
			rows[i] = []string{r.Name, r.Shape, r.Structure, fmt.Sprint(r.Nullability), r.TypeName}
		}
		return printTable(cmd.OutOrStdout(), []string{"Type", "Shape", "Structure", "Nullable layers", "Schema name"}, rows)
	})
}

func shapeReports(names []string) ([]ShapeReport, error) {
	eng, err := currentEngine()
	if err != nil {
		return nil, err
	}
	entries := catalog.Types()
	if len(names) > 0 {
		entries = entries[:0:0]
		for _, name := range names {
			t, ok := catalog.Lookup(name)
			if !ok {
				return nil, errors.WithHintf(
					errors.Newf("unknown catalog type %q", name),
					"known types: %s", strings.Join(catalogNames(), ", "))
			}
			entries = append(entries, catalog.Entry{Name: name, Type: t})
		}
	}

	reports := make([]ShapeReport, 0, len(entries))
	for _, e := range entries {
		s := eng.inspector.GetType(e.Type)
		typeName, err := eng.inspector.TypeName(shape.NamedType(s).RuntimeType())
		if err != nil {
			return nil, err
		}
		reports = append(reports, ShapeReport{
			Name:        e.Name,
			GoType:      e.Type.String(),
			Shape:       s.String(),
			Structure:   shape.Describe(s),
			Nullability: eng.inspector.CollectNullability(s),
			TypeName:    typeName,
		})
	}
	return reports, nil
}

func catalogNames() []string {
	var out []string
	for _, e := range catalog.Types() {
		out = append(out, e.Name)
	}
	for _, e := range catalog.Structs() {
		out = append(out, e.Name)
	}
	return out
}
