package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"nihil/internal/meta"
	"nihil/internal/policy"
	"nihil/internal/unit"
)

var policyCmd = &cobra.Command{
	Use:   "policy [nihil.toml|directory]",
	Short: "Show the effective severity policy for a unit",
	Long: `Policy resolves what a unit's manifest means for diagnostics: one
severity level per origin axis. Without an argument it reads the
manifest in the current directory; a unit without one checks under
legacy defaults, where every axis is off.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPolicy,
}

func runPolicy(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, unit.ManifestName)
	}

	out := cmd.OutOrStdout()
	man, err := loadManifestForDisplay(path)
	if err != nil {
		return err
	}

	if man == nil {
		fmt.Fprintf(out, "no %s here; legacy defaults apply\n", unit.ManifestName)
	} else {
		fmt.Fprintf(out, "unit %s (mode %s)\n", man.Unit.Name, man.Mode())
		switch {
		case man.Nullness != nil:
			fmt.Fprintln(out, "severity set by the [nullness] section")
		case man.Mode() == meta.ScopeEnabled:
			fmt.Fprintln(out, "no [nullness] section; fresh defaults for a checked unit")
		default:
			fmt.Fprintln(out, "no [nullness] section; legacy defaults")
		}
	}
	fmt.Fprintln(out)
	renderPolicyAxes(out, man.Policy())
	return nil
}

// loadManifestForDisplay treats a missing manifest as the legacy
// default rather than an error, the way the driver does.
func loadManifestForDisplay(path string) (*unit.Manifest, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return unit.LoadManifest(path)
}

func renderPolicyAxes(out io.Writer, tab policy.Table) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Axis", "Level", "Governs"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})
	table.Append([]string{"nullable", tab.Nullable.String(), "mismatches whose value is tracked nullable"})
	table.Append([]string{"nonnull", tab.NonNull.String(), "mismatches contradicting a non-null declaration"})
	table.Append([]string{"oblivious", tab.Oblivious.String(), "mismatches rooted in unchecked foreign code"})
	table.Render()
}
