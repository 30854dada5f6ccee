package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nihil/internal/diagfmt"
	"nihil/internal/driver"
	"nihil/internal/meta"
	"nihil/internal/unit"
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] <unit.nmb>",
	Short: "Check a bundle and write its interface file",
	Long: `Export runs a full check and, when no error-level diagnostics remain,
writes the unit's committed signatures as an interface file for
dependent compilations. A failing check writes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "interface file path (default: bundle name with "+meta.InterfaceExt+")")
	exportCmd.Flags().Int("jobs", 0, "max parallel narrowing workers (0=auto)")
	exportCmd.Flags().String("manifest", "", "manifest path (default: nihil.toml next to the bundle)")
}

// defaultExportPath places the interface file next to the bundle under
// the bundle's own name.
func defaultExportPath(bundlePath string) string {
	base := filepath.Base(bundlePath)
	base = strings.TrimSuffix(base, unit.BundleExt)
	return filepath.Join(filepath.Dir(bundlePath), base+meta.InterfaceExt)
}

func runExport(cmd *cobra.Command, args []string) error {
	bundlePath := args[0]

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if output == "" {
		output = defaultExportPath(bundlePath)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return fmt.Errorf("failed to get manifest flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	sess := driver.NewSession()
	res, err := driver.CheckBundle(cmd.Context(), sess, bundlePath, driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		ManifestPath:   manifestPath,
		ExportPath:     output,
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if res.Failed() {
		diagfmt.Short(os.Stderr, res.Bag, res.Files, false)
		cmd.SilenceUsage = true
		return fmt.Errorf("unit has errors; interface not written")
	}

	name := ""
	if res.Unit != nil {
		name = res.Unit.Name
	}
	fmt.Fprintf(os.Stdout, "exported %s -> %s\n", name, output)
	return nil
}
