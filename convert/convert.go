// Package convert turns reflected module objects into stub interface text.
//
// A conversion is a pure in-memory transformation: members are classified
// into stub elements, sorted under a deterministic global key, rendered with
// Cython primitive spellings translated to Python builtins, and the module's
// import candidates pruned down to the names the rendered body actually
// references.
package convert

import (
	"fmt"
	"strings"

	"github.com/sbvh/pyxstub/errors"
	"github.com/sbvh/pyxstub/logger"
	"github.com/sbvh/pyxstub/pysrc"
	"github.com/sbvh/pyxstub/reflected"
	"github.com/sbvh/pyxstub/version"
)

// Options adjust a single module conversion.
type Options struct {
	// KeepAllImports disables post-render import pruning, emitting every
	// import candidate whether or not the body references it.
	KeepAllImports bool
}

// Convert produces the stub text for one reflected module.
func Convert(module reflected.Module) (string, error) {
	return ConvertWithOptions(module, Options{})
}

// ConvertWithOptions is Convert with explicit options.
//
// The returned text is a provenance header, the module docstring if any, the
// pruned and merged import block, and the sorted module body, separated by
// blank lines. Errors wrap errors.ErrInvalidContainer and are fatal for this
// module only.
func ConvertWithOptions(module reflected.Module, opts Options) (string, error) {
	if module == nil {
		return "", errors.NewInvalidContainerError("nil module")
	}
	moduleName := module.Name()
	if moduleName == "" {
		return "", errors.NewInvalidContainerError("module has no name")
	}

	tr := newTranslator()

	var imports []*importSeg
	var members []segment

	for _, extra := range module.ExtraTypeSources() {
		if !isImported(moduleName, extra) {
			continue
		}
		if imp, ok := importForExtra(extra); ok {
			imports = append(imports, imp)
		}
	}

	for _, m := range module.Members() {
		if isImported(moduleName, m.Value) {
			imports = append(imports, importFor(m.Name, m.Value))
			continue
		}
		seg, err := classifyMember(m.Name, m.Value)
		if err != nil {
			return "", errors.Wrapf(err, "module %s", moduleName)
		}
		if seg != nil {
			members = append(members, seg)
		}
	}

	// Declared annotations are appended as-is; a name already present from
	// member classification is not merged or deduplicated.
	for _, ann := range module.Annotations() {
		members = append(members, &annotationSeg{name: ann.Name, typeExpr: ann.Type})
	}

	sortSegments(members)

	body, err := renderBody(tr, members)
	if err != nil {
		return "", errors.Wrapf(err, "module %s", moduleName)
	}

	prune := !opts.KeepAllImports
	if prune {
		tree, parseErr := pysrc.ParseModule(body)
		if parseErr != nil {
			logger.Warnw("Generated body is not parseable, keeping all imports",
				"module", moduleName,
				"error", parseErr)
			prune = false
		} else {
			tr.collectBody(tree)
		}
	}

	kept := imports
	if prune {
		kept = make([]*importSeg, 0, len(imports))
		for _, imp := range imports {
			if tr.isReferenced(imp.outName()) {
				kept = append(kept, imp)
			}
		}
	}

	importBlock, err := renderImports(consolidateImports(kept))
	if err != nil {
		return "", errors.Wrapf(err, "module %s", moduleName)
	}

	var sections []string
	if doc := module.Doc(); strings.TrimSpace(doc) != "" {
		sections = append(sections, renderDocstring(doc, 0))
	}
	if importBlock != "" {
		sections = append(sections, importBlock)
	}
	if body != "" {
		sections = append(sections, body)
	}

	header := fmt.Sprintf("# This file was generated by pyxstub v%s\n", version.Version)
	return header + strings.Join(sections, "\n\n"), nil
}

// isImported reports whether a member is a binding to something defined
// elsewhere: a nested module reference, or a named object whose owning
// module differs from the one being converted.
func isImported(moduleName string, v reflected.Value) bool {
	if v.Kind() == reflected.KindModule {
		return true
	}
	named, ok := v.(reflected.Named)
	if !ok {
		return false
	}
	if _, has := named.OwnName(); !has {
		return false
	}
	scoped, ok := v.(reflected.ModuleScoped)
	if !ok {
		return false
	}
	owner, has := scoped.OwningModule()
	if !has {
		return false
	}
	return owner != moduleName
}

// importFor builds the import statement that reproduces a member binding.
// bindingName is the name the member is reachable under in the converted
// module; it becomes an alias when it differs from the object's own name.
func importFor(bindingName string, v reflected.Value) *importSeg {
	own := bindingName
	if named, ok := v.(reflected.Named); ok {
		if name, has := named.OwnName(); has {
			own = name
		}
	}
	alias := ""
	if own != bindingName {
		alias = bindingName
	}
	if scoped, ok := v.(reflected.ModuleScoped); ok {
		if owner, has := scoped.OwningModule(); has {
			return &importSeg{source: owner, name: own, alias: alias}
		}
	}
	return &importSeg{source: own, alias: alias}
}

// importForExtra treats an extra type source as a binding under its own
// name. Anonymous values cannot be imported and are dropped.
func importForExtra(v reflected.Value) (*importSeg, bool) {
	named, ok := v.(reflected.Named)
	if !ok {
		return nil, false
	}
	name, has := named.OwnName()
	if !has {
		return nil, false
	}
	return importFor(name, v), true
}

// consolidateImports deduplicates exact repeats, merges same-source named
// imports into grouped statements, and sorts the result. Group members keep
// accumulation order; the group sorts under its first member's key.
func consolidateImports(imports []*importSeg) []segment {
	type tripleKey struct{ source, name, alias string }
	seen := make(map[tripleKey]bool)

	var bare []segment
	var sources []string
	named := make(map[string][]*importSeg)

	for _, imp := range imports {
		k := tripleKey{imp.source, imp.name, imp.alias}
		if seen[k] {
			continue
		}
		seen[k] = true
		if imp.name == "" {
			bare = append(bare, imp)
			continue
		}
		if _, ok := named[imp.source]; !ok {
			sources = append(sources, imp.source)
		}
		named[imp.source] = append(named[imp.source], imp)
	}

	out := bare
	for _, source := range sources {
		group := named[source]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		merged := &importGroupSeg{source: source}
		for _, imp := range group {
			merged.names = append(merged.names, importedBinding{name: imp.name, alias: imp.alias})
		}
		out = append(out, merged)
	}
	sortSegments(out)
	return out
}

func renderImports(imports []segment) (string, error) {
	lines := make([]string, 0, len(imports))
	for _, imp := range imports {
		line, err := imp.render(nil, 0)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// renderBody renders sorted elements at top level, separated by blank
// lines; runs of import statements stay contiguous.
func renderBody(tr *translator, segs []segment) (string, error) {
	var sb strings.Builder
	prevImport := false
	for i, s := range segs {
		line, err := s.render(tr, 0)
		if err != nil {
			return "", err
		}
		_, isImport := s.(*importSeg)
		if i > 0 {
			if isImport && prevImport {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString(line)
		prevImport = isImport
	}
	return sb.String(), nil
}
