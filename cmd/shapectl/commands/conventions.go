package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/teranos/typeshape/inspector"
	"github.com/teranos/typeshape/naming"
)

// ConventionsCmd represents the conventions command
var ConventionsCmd = &cobra.Command{
	Use:   "conventions",
	Short: "Show registered conventions and what a build resolves",
	Long: `List the convention factories registered for each contract and scope, then
resolve the naming and inspection conventions of the configured default scope
and show the keys the build resolved, in order.

Examples:
  shapectl conventions
  shapectl conventions -o json`,
	Args: cobra.NoArgs,
	RunE: runConventions,
}

var conventionsOutput string

func init() {
	ConventionsCmd.Flags().StringVarP(&conventionsOutput, "output", "o", formatTable, "Output format: table, json, yaml")
}

// ConventionsReport describes one convention build.
type ConventionsReport struct {
	BuildID       string         `json:"buildId"`
	DefaultScope  string         `json:"defaultScope"`
	Registrations []Registration `json:"registrations"`
	Resolved      []string       `json:"resolved"`
}

// Registration is one registered contract and scope.
type Registration struct {
	Contract  string `json:"contract"`
	Scope     string `json:"scope"`
	Factories int    `json:"factories"`
}

func runConventions(cmd *cobra.Command, _ []string) error {
	eng, err := currentEngine()
	if err != nil {
		return err
	}
	if _, err := naming.Get(eng.ctx, ""); err != nil {
		return err
	}
	if _, err := inspector.GetPolicy(eng.ctx, ""); err != nil {
		return err
	}

	report := ConventionsReport{
		BuildID:      eng.ctx.ID().String(),
		DefaultScope: eng.ctx.DefaultScope(),
		Resolved:     eng.ctx.Resolved(),
	}
	for _, r := range eng.registry.Registrations() {
		report.Registrations = append(report.Registrations, Registration(r))
	}

	out := cmd.OutOrStdout()
	return render(out, conventionsOutput, report, func() error {
		fmt.Fprintf(out, "Build %s (default scope %q)\n\n", report.BuildID, report.DefaultScope)
		rows := make([][]string, len(report.Registrations))
		for i, r := range report.Registrations {
			rows[i] = []string{r.Contract, r.Scope, strconv.Itoa(r.Factories)}
		}
		if err := printTable(out, []string{"Contract", "Scope", "Factories"}, rows); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nResolved:")
		for i, k := range report.Resolved {
			fmt.Fprintf(out, "  %d. %s\n", i+1, k)
		}
		return nil
	})
}
