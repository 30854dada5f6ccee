package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"nihil/internal/diag"
	"nihil/internal/meta"
	"nihil/internal/source"
	"nihil/internal/unit"
)

// CheckBundle runs the whole pipeline for one on-disk bundle: read it
// and the manifest next to it, resolve imported interface files,
// decode, analyze, and export the unit's interface when requested.
//
// Analysis trouble becomes diagnostics in the result; the error
// return is reserved for infrastructure, a bundle or manifest that
// cannot be read, a failing export write, or a canceled context.
func CheckBundle(ctx context.Context, sess *Session, bundlePath string, opts Options) (*Result, error) {
	r := newRun(sess, opts)

	m := r.begin(PhaseReadBundle)
	b, err := unit.ReadBundle(bundlePath)
	m.end("")
	if err != nil {
		return nil, err
	}

	manPath := opts.ManifestPath
	if manPath == "" {
		manPath = filepath.Join(filepath.Dir(bundlePath), unit.ManifestName)
	}
	m = r.begin(PhaseReadManifest)
	man, err := loadOptionalManifest(manPath)
	m.end("")
	if err != nil {
		return nil, err
	}

	m = r.begin(PhaseResolveImports)
	r.resolveImports(b.Imports, filepath.Dir(bundlePath))
	m.end(fmt.Sprintf("imports=%d", len(b.Imports)))

	if sess.Files != nil {
		sess.Files.SetBaseDir(filepath.Dir(bundlePath))
	}
	m = r.begin(PhaseDecode)
	u := unit.Decode(b, man, sess.Files, sess.Types, sess.Names, sess.Sigs, sess.Vars, r.rep)
	if u == nil {
		m.end("failed")
		return r.finish(nil), nil
	}
	m.end(fmt.Sprintf("sigs=%d funcs=%d", len(u.Sigs), len(u.Funcs)))

	if err := r.analyze(ctx, u); err != nil {
		return nil, err
	}

	if opts.ExportPath != "" && !r.bag.HasErrors() {
		m = r.begin(PhaseExport)
		err := r.export(u, opts.ExportPath)
		m.end("")
		if err != nil {
			return nil, err
		}
	}
	return r.finish(u), nil
}

// loadOptionalManifest reads a unit manifest, treating a missing file
// as no manifest at all. Units without one check under legacy
// defaults.
func loadOptionalManifest(path string) (*unit.Manifest, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return unit.LoadManifest(path)
}

// resolveImports loads every interface file the bundle names and
// registers its signatures in the session tables. A failed import
// degrades to diagnostics: calls into the missing unit stay
// unresolved and the decode pass reports each one.
func (r *run) resolveImports(paths []string, baseDir string) {
	rep := r.rep
	for _, p := range paths {
		path := p
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		mod, err := r.sess.Meta.Load(path)
		if err != nil {
			diag.ReportError(rep, diag.UnitUnknownImport, source.Span{},
				fmt.Sprintf("cannot load interface %q: %v", p, err)).Emit()
			continue
		}
		meta.Resolve(mod, r.sess.Types, r.sess.Names, r.sess.Sigs, rep, source.Span{})
	}
}

// export writes the unit's committed signatures as an interface file.
// Runs only after a clean analysis, so every variable has committed
// and the encoder never sees an unresolved slot.
func (r *run) export(u *unit.Unit, path string) error {
	mod, err := meta.BuildModule(r.sess.Types, r.sess.Sigs, r.sess.Names, u.ID, u.Scope)
	if err != nil {
		return err
	}
	return meta.Export(path, mod)
}
