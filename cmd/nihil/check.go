package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nihil/internal/diagfmt"
	"nihil/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <unit.nmb>",
	Short: "Check a module bundle for nullability violations",
	Long: `Check decodes a compiled module bundle, runs nullability inference and
flow narrowing over its function bodies, and reports every violation the
unit's policy does not suppress. Severity comes from the nihil.toml next
to the bundle; error-level findings fail the check.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel narrowing workers (0=auto)")
	checkCmd.Flags().String("manifest", "", "manifest path (default: nihil.toml next to the bundle)")
	checkCmd.Flags().String("export", "", "write the unit's interface file here after a clean check")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("preview", false, "show before/after previews for fix suggestions")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().String("ui", "auto", "phase progress display (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	bundlePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return fmt.Errorf("failed to get manifest flag: %w", err)
	}
	exportPath, err := cmd.Flags().GetString("export")
	if err != nil {
		return fmt.Errorf("failed to get export flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		ManifestPath:   manifestPath,
		ExportPath:     exportPath,
		EnableTimings:  showTimings,
	}
	sess := driver.NewSession()

	// The progress display owns the terminal while it runs, so it only
	// pairs with human-oriented output.
	var res *driver.Result
	if format == "pretty" && shouldUseTUI(mode) {
		title := "checking " + filepath.Base(bundlePath)
		res, err = runCheckWithUI(cmd.Context(), title, sess, bundlePath, opts)
	} else {
		res, err = driver.CheckBundle(cmd.Context(), sess, bundlePath, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := suggest || preview

	switch format {
	case "pretty":
		diagfmt.Pretty(os.Stdout, res.Bag, res.Files, diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   withNotes,
			ShowFixes:   showFixes,
			ShowPreview: preview,
		})
	case "short":
		diagfmt.Short(os.Stdout, res.Bag, res.Files, withNotes)
	case "json":
		if err := diagfmt.JSON(os.Stdout, res.Bag, res.Files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  preview,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}

	if showTimings && format == "pretty" {
		printTimings(os.Stdout, res.Timing)
	}

	if res.Failed() {
		// Suppress cobra usage output; the diagnostics already said
		// everything.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}
