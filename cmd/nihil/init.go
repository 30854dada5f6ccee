package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nihil/internal/unit"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Write a starter unit manifest",
	Long: `Init creates a ` + unit.ManifestName + ` for a compilation unit with checking
enabled and every policy axis at warn. If [path|name] is omitted, the
current directory is initialized; a non-existing name creates a
directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "unit"
	}

	manifestPath := filepath.Join(target, unit.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("unit already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "initialized unit %s in %s\n", name, rel)
	fmt.Fprintf(os.Stdout, "  - %s\n", unit.ManifestName)
	return nil
}

// buildDefaultManifest renders the manifest new units start from:
// checking on, every axis warning. Tightening an axis to error is a
// one-line edit once the unit is clean.
func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# Nullability checking for this compilation unit.
[unit]
name = "%s"
mode = "enabled"

# Severity per mismatch origin: off | warn | error.
[nullness]
nullable = "warn"
nonnull = "warn"
oblivious = "warn"
`, name)
}
