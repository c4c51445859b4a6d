// Package stubgen drives batch stub generation: each reflected module is
// converted and the resulting stub written beside its originating source
// file with the .pyi extension.
package stubgen

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sbvh/pyxstub/convert"
	"github.com/sbvh/pyxstub/errors"
	"github.com/sbvh/pyxstub/logger"
	"github.com/sbvh/pyxstub/reflected"
)

// cinitFile marks modules whose stubs keep every import candidate; a
// __cinit__ module exists to re-export types, so pruning would gut it.
const cinitFile = "__cinit__.pyx"

// ModuleSource pairs a reflected module with the source file it was built
// from.
type ModuleSource struct {
	Module reflected.Module
	Path   string
}

// Options adjust one generation batch.
type Options struct {
	// OutDir redirects output files; "" writes next to each source.
	OutDir string
	// KeepAllImports disables import pruning for every module, not just
	// __cinit__ modules.
	KeepAllImports bool
}

// Result reports the outcome of one batch.
type Result struct {
	// Written lists the stub files produced, in input order.
	Written []string
	// Failed counts modules whose conversion or write failed.
	Failed int
}

// Generate converts every module and writes its stub. A failing module is
// logged and counted, and the batch continues; the returned error is non-nil
// when at least one module failed.
func Generate(sources []ModuleSource, opts Options) (*Result, error) {
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating output directory %s", opts.OutDir)
		}
	}

	res := &Result{}
	for _, src := range sources {
		convOpts := convert.Options{
			KeepAllImports: opts.KeepAllImports || filepath.Base(src.Path) == cinitFile,
		}
		name := "<unnamed>"
		if src.Module != nil {
			name = src.Module.Name()
		}

		text, err := convert.ConvertWithOptions(src.Module, convOpts)
		if err != nil {
			logger.Errorw("Module conversion failed",
				"module", name,
				"path", src.Path,
				"error", err)
			res.Failed++
			continue
		}

		out := StubPath(src.Path, opts.OutDir)
		if err := os.WriteFile(out, []byte(text+"\n"), 0o644); err != nil {
			logger.Errorw("Stub write failed",
				"module", name,
				"path", out,
				"error", err)
			res.Failed++
			continue
		}
		logger.Debugw("Stub written",
			"module", name,
			"path", out)
		res.Written = append(res.Written, out)
	}

	if res.Failed > 0 {
		return res, errors.Newf("%d of %d modules failed", res.Failed, len(sources))
	}
	return res, nil
}

// StubPath maps a source path to its stub path: the extension becomes .pyi,
// and outDir (when set) replaces the source directory.
func StubPath(srcPath, outDir string) string {
	base := filepath.Base(srcPath)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".pyi"
	if outDir != "" {
		return filepath.Join(outDir, base)
	}
	return filepath.Join(filepath.Dir(srcPath), base)
}
