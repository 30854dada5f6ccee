package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"nihil/internal/diag"
	"nihil/internal/meta"
	"nihil/internal/source"
	"nihil/internal/types"
	"nihil/internal/unit"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <unit.nmb|unit.nmi|nihil.toml>",
	Short: "Show what a bundle, interface file, or manifest contains",
	Long: `Inspect prints the declared surface of an engine input: the
signatures and bodies of a bundle, the exported signatures of an
interface file, or the checking policy of a manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()
	switch {
	case strings.HasSuffix(path, unit.BundleExt):
		return inspectBundle(out, path)
	case strings.HasSuffix(path, meta.InterfaceExt):
		return inspectModule(out, path)
	case filepath.Base(path) == unit.ManifestName || strings.HasSuffix(path, ".toml"):
		return inspectManifest(out, path)
	default:
		return fmt.Errorf("cannot inspect %q: expected %s, %s, or %s",
			path, unit.BundleExt, meta.InterfaceExt, unit.ManifestName)
	}
}

// displayTables is a throwaway decode target. Inspection resolves wire
// signatures into fresh tables so the type describer can render them;
// nothing survives the command.
type displayTables struct {
	in    *types.Interner
	names *source.Interner
	tab   *types.SigTable
	bag   *diag.Bag
}

func newDisplayTables() *displayTables {
	names := source.NewInterner()
	in := types.NewInterner()
	in.SetNames(names)
	return &displayTables{
		in:    in,
		names: names,
		tab:   types.NewSigTable(),
		bag:   diag.NewBag(64),
	}
}

func inspectBundle(out io.Writer, path string) error {
	b, err := unit.ReadBundle(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "bundle %s (schema %d)\n", b.Name, b.Schema)
	fmt.Fprintf(out, "mode: %s\n", b.Scope)
	for _, imp := range b.Imports {
		fmt.Fprintf(out, "import: %s\n", imp)
	}
	for i := range b.Files {
		fmt.Fprintf(out, "source: %s (%d bytes)\n", b.Files[i].Path, len(b.Files[i].Content))
	}

	d := newDisplayTables()
	root := meta.RootScope(b.Scope)
	unitID := d.names.Intern(meta.NormalizeName(b.Name))
	rep := diag.BagReporter{Bag: d.bag}

	if len(b.Sigs) > 0 {
		fmt.Fprintln(out)
		table := newInspectTable(out, []string{"Signature", "Type", "Annotated", "Tags"})
		for i := range b.Sigs {
			enc := &b.Sigs[i].Sig
			dec, ok := meta.ResolveOwnSig(enc, b.Name, root, unitID, d.in, d.names, d.tab, rep, source.Span{})
			if !ok {
				table.Append([]string{enc.Name, "<damaged>", "", ""})
				continue
			}
			sig := d.tab.MustGet(dec.Sig())
			table.Append([]string{enc.Name, describeSig(d.in, sig), annotatedPositions(sig), behaviorTags(sig)})
		}
		table.Render()
	}

	if len(b.Funcs) > 0 {
		fmt.Fprintln(out)
		table := newInspectTable(out, []string{"Function", "Signature", "Locals", "Blocks"})
		for i := range b.Funcs {
			fe := &b.Funcs[i]
			table.Append([]string{
				fe.Name,
				fe.Sig,
				fmt.Sprintf("%d", len(fe.Locals)),
				fmt.Sprintf("%d", len(fe.Blocks)),
			})
		}
		table.Render()
	}

	reportInspectProblems(out, d.bag)
	return nil
}

func inspectModule(out io.Writer, path string) error {
	mod, err := meta.ReadModule(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "unit %s (schema %d)\n", mod.Unit, mod.Schema)
	fmt.Fprintf(out, "mode: %s\n", mod.Scope)

	d := newDisplayTables()
	meta.Resolve(mod, d.in, d.names, d.tab, diag.BagReporter{Bag: d.bag}, source.Span{})
	unitID := d.names.Intern(meta.NormalizeName(mod.Unit))

	if len(mod.Sigs) > 0 {
		fmt.Fprintln(out)
		table := newInspectTable(out, []string{"Signature", "Type", "Scope", "Annotated", "Tags"})
		for i := range mod.Sigs {
			enc := &mod.Sigs[i]
			nameID := d.names.Intern(meta.NormalizeName(enc.Name))
			id, ok := d.tab.ByName(unitID, nameID)
			if !ok {
				table.Append([]string{enc.Name, "<damaged>", enc.Scope.String(), "", ""})
				continue
			}
			sig := d.tab.MustGet(id)
			table.Append([]string{
				enc.Name,
				describeSig(d.in, sig),
				enc.Scope.String(),
				annotatedPositions(sig),
				behaviorTags(sig),
			})
		}
		table.Render()
	}

	reportInspectProblems(out, d.bag)
	return nil
}

func inspectManifest(out io.Writer, path string) error {
	man, err := unit.LoadManifest(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "unit %s\n", man.Unit.Name)
	fmt.Fprintf(out, "mode: %s\n", man.Mode())
	fmt.Fprintln(out)
	renderPolicyAxes(out, man.Policy())
	return nil
}

func newInspectTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	return table
}

// describeSig renders a resolved signature the way diagnostics render
// types: "fn[T](List<string?>) -> T?".
func describeSig(in *types.Interner, s *types.Sig) string {
	var sb strings.Builder
	sb.WriteString("fn")
	if len(s.TypeParams) > 0 {
		sb.WriteString("[")
		for i, tp := range s.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(in.Describe(tp))
		}
		sb.WriteString("]")
	}
	sb.WriteString("(")
	for i, p := range s.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(in.DescribeRef(p))
	}
	sb.WriteString(") -> ")
	sb.WriteString(in.DescribeRef(s.Result))
	return sb.String()
}

// annotatedPositions lists may-be-null annotations: "result" for the
// return position, "p1" for the first parameter.
func annotatedPositions(s *types.Sig) string {
	var parts []string
	for _, pos := range s.MaybeNull {
		if pos == 0 {
			parts = append(parts, "result")
		} else {
			parts = append(parts, fmt.Sprintf("p%d", pos))
		}
	}
	return strings.Join(parts, " ")
}

// behaviorTags lists behavioral annotations with the parameter they
// speak about, numbered like annotatedPositions.
func behaviorTags(s *types.Sig) string {
	var parts []string
	for _, tag := range s.Tags {
		parts = append(parts, fmt.Sprintf("%s(p%d)", tag.Kind, tag.Param+1))
	}
	return strings.Join(parts, " ")
}

// reportInspectProblems prints whatever the decode complained about.
// Inspection never fails on content problems; a damaged entry still
// tells the reader something. Spans point nowhere here, so the short
// renderer would drop these lines.
func reportInspectProblems(out io.Writer, bag *diag.Bag) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	fmt.Fprintln(out)
	for _, d := range bag.Items() {
		fmt.Fprintf(out, "%s %s %s\n", strings.ToLower(d.Severity.String()), d.Code.ID(), d.Message)
	}
}
