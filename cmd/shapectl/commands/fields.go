package commands

import (
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"github.com/teranos/typeshape/cmd/shapectl/catalog"
	"github.com/teranos/typeshape/errors"
)

// FieldsCmd represents the fields command
var FieldsCmd = &cobra.Command{
	Use:   "fields <type>",
	Short: "Show the inspected members of a catalog object type",
	Long: `List the schema members of a catalog struct with their convention names
and shapes, after nullability tags and annotation files are applied.

Examples:
  shapectl fields Order
  shapectl fields 'Page[Order]' -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runFields,
}

// SchemaCmd represents the schema command
var SchemaCmd = &cobra.Command{
	Use:   "schema <type>",
	Short: "Export a catalog object type as JSON Schema",
	Long: `Render a catalog struct as a JSON Schema object. Nullable layers become
oneOf with null, lists become arrays and object types reference #/$defs by
their convention name.

Examples:
  shapectl schema Order
  shapectl schema Customer -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

var (
	fieldsOutput string
	schemaOutput string
)

func init() {
	FieldsCmd.Flags().StringVarP(&fieldsOutput, "output", "o", formatTable, "Output format: table, json, yaml")
	SchemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", formatJSON, "Output format: json, yaml")
}

// FieldReport describes one inspected member.
type FieldReport struct {
	Name     string `json:"name"`
	GoName   string `json:"goName"`
	GoType   string `json:"goType"`
	Shape    string `json:"shape"`
	Nullable bool   `json:"nullable"`
}

func structType(name string) (reflect.Type, error) {
	for _, e := range catalog.Structs() {
		if e.Name == name {
			return e.Type, nil
		}
	}
	names := make([]string, 0)
	for _, e := range catalog.Structs() {
		names = append(names, e.Name)
	}
	return nil, errors.WithHintf(
		errors.Newf("unknown catalog object type %q", name),
		"known object types: %s", strings.Join(names, ", "))
}

func runFields(cmd *cobra.Command, args []string) error {
	t, err := structType(args[0])
	if err != nil {
		return err
	}
	eng, err := currentEngine()
	if err != nil {
		return err
	}
	fields, err := eng.inspector.Fields(t)
	if err != nil {
		return err
	}

	reports := make([]FieldReport, len(fields))
	for i, f := range fields {
		reports[i] = FieldReport{
			Name:     f.Name,
			GoName:   f.GoName,
			GoType:   f.Type.String(),
			Shape:    f.Shape.String(),
			Nullable: f.Shape.IsNullable(),
		}
	}
	return render(cmd.OutOrStdout(), fieldsOutput, reports, func() error {
		rows := make([][]string, len(reports))
		for i, r := range reports {
			rows[i] = []string{r.Name, r.GoName, r.GoType, r.Shape}
		}
		return printTable(cmd.OutOrStdout(), []string{"Name", "Go field", "Go type", "Shape"}, rows)
	})
}

func runSchema(cmd *cobra.Command, args []string) error {
	t, err := structType(args[0])
	if err != nil {
		return err
	}
	eng, err := currentEngine()
	if err != nil {
		return err
	}
	schema, err := eng.inspector.ObjectSchema(t)
	if err != nil {
		return err
	}
	if schemaOutput == formatTable {
		return errors.New("schema output must be json or yaml")
	}
	return render(cmd.OutOrStdout(), schemaOutput, schema, nil)
}
