package convert

import (
	"strings"

	"github.com/sbvh/pyxstub/pysrc"
)

// Cython type spellings grouped by the Python builtin they collapse to.
// See https://cython.readthedocs.io/en/latest/src/userguide/language_basics.html
var (
	cythonInts = []string{
		"char",
		"short",
		"Py_UNICODE",
		"Py_UCS4",
		"long",
		"longlong",
		"Py_hash_t",
		"Py_ssize_t",
		"size_t",
		"ssize_t",
		"ptrdiff_t",
	}

	cythonFloats = []string{
		"longdouble",
		"double",
	}

	cythonComplexes = []string{
		"longdoublecomplex",
		"doublecomplex",
		"floatcomplex",
	}
)

// translator rewrites Cython primitive type spellings into Python builtins
// and accumulates every identifier it encounters. The referenced set is what
// import pruning matches outName() against.
//
// A translator is built fresh for each conversion so no state leaks between
// modules converted by the same process.
type translator struct {
	table      map[string]string
	referenced map[string]struct{}
}

func newTranslator() *translator {
	table := map[string]string{
		"bint":    "bool",
		"unicode": "str",
	}
	for _, name := range cythonInts {
		table[name] = "int"
	}
	for _, name := range cythonFloats {
		table[name] = "float"
	}
	for _, name := range cythonComplexes {
		table[name] = "complex"
	}
	return &translator{
		table:      table,
		referenced: make(map[string]struct{}),
	}
}

func (tr *translator) lookup(id string) (string, bool) {
	out, ok := tr.table[id]
	return out, ok
}

func (tr *translator) record(names []string) {
	for _, name := range names {
		tr.referenced[name] = struct{}{}
	}
}

func (tr *translator) isReferenced(name string) bool {
	_, ok := tr.referenced[name]
	return ok
}

// translateExpr rewrites one annotation fragment. On a parse failure the
// caller keeps the verbatim text and no identifiers are recorded from it,
// which can cost a needed import its place in the pruned list; that
// approximation is accepted.
func (tr *translator) translateExpr(fragment string) (string, error) {
	expr, err := pysrc.ParseExpr(fragment)
	if err != nil {
		return "", err
	}
	out, seen := pysrc.RewriteNames(fragment, expr, tr.lookup)
	tr.record(seen)
	return out, nil
}

// translateSignature rewrites the annotation and default expressions of a
// "name(params) -> ret" definition line, leaving parameter names and the
// function name untouched.
func (tr *translator) translateSignature(definition string) (string, error) {
	fn, err := pysrc.ParseSignature(definition)
	if err != nil {
		return "", err
	}
	src := pysrc.SignatureSource(definition)
	out, seen := pysrc.RewriteNames(src, fn, tr.lookup)
	tr.record(seen)
	out = strings.TrimPrefix(out, "def ")
	out = strings.TrimSuffix(out, ": pass")
	return out, nil
}

// collectBody records every identifier referenced in a re-parsed body tree.
func (tr *translator) collectBody(tree pysrc.Node) {
	tr.record(pysrc.CollectNames(tree))
}
