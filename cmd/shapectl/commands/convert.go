package commands

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/teranos/typeshape/cmd/shapectl/catalog"
	"github.com/teranos/typeshape/errors"
)

// ConvertCmd represents the convert command
var ConvertCmd = &cobra.Command{
	Use:   "convert <value> --to <type>",
	Short: "Convert a string through the value conversion registry",
	Long: `Convert a command line value to another Go type using the conversion
registry: registered enums, scalars (numbers, booleans, durations, times) and
element-wise lists of those.

Examples:
  shapectl convert 42 --to int
  shapectl convert 1.5h --to duration
  shapectl convert shipped --to status
  shapectl convert 1,2,3 --to []int`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var convertTo string

var convertTargets = map[string]reflect.Type{
	"string":   reflect.TypeFor[string](),
	"int":      reflect.TypeFor[int](),
	"int64":    reflect.TypeFor[int64](),
	"uint8":    reflect.TypeFor[uint8](),
	"float":    reflect.TypeFor[float64](),
	"bool":     reflect.TypeFor[bool](),
	"duration": reflect.TypeFor[time.Duration](),
	"time":     reflect.TypeFor[time.Time](),
	"status":   reflect.TypeFor[catalog.Status](),
	"*int":     reflect.TypeFor[*int](),
}

func init() {
	ConvertCmd.Flags().StringVarP(&convertTo, "to", "t", "string", "Target type: "+strings.Join(targetNames(), ", ")+" or []<type>")
}

func targetNames() []string {
	names := make([]string, 0, len(convertTargets))
	for name := range convertTargets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func targetType(name string) (reflect.Type, bool) {
	if elem, ok := strings.CutPrefix(name, "[]"); ok {
		t, ok := targetType(elem)
		if !ok {
			return nil, false
		}
		return reflect.SliceOf(t), true
	}
	t, ok := convertTargets[name]
	return t, ok
}

func runConvert(cmd *cobra.Command, args []string) error {
	to, ok := targetType(convertTo)
	if !ok {
		return errors.WithHintf(
			errors.Newf("unknown target type %q", convertTo),
			"supported targets: %s", strings.Join(targetNames(), ", "))
	}
	eng, err := currentEngine()
	if err != nil {
		return err
	}

	from := reflect.TypeFor[string]()
	var value any = args[0]
	if to.Kind() == reflect.Slice {
		from = reflect.TypeFor[[]string]()
		value = strings.Split(args[0], ",")
	}

	out, err := eng.convert.Convert(from, to, value)
	if err != nil {
		return err
	}
	if s, ok := out.(fmt.Stringer); ok && to.Kind() != reflect.Pointer {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", s, to)
		return nil
	}
	if v := reflect.ValueOf(out); v.Kind() == reflect.Pointer && !v.IsNil() {
		out = v.Elem().Interface()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%v (%s)\n", out, to)
	return nil
}
