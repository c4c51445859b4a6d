package pysrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbvh/pyxstub/errors"
)

func TestParseExprForms(t *testing.T) {
	cases := map[string]string{
		"name":           "object",
		"subscript":      "Optional[int]",
		"tuple sub":      "Dict[str, int]",
		"attribute":      "typing.List",
		"union":          "int | None",
		"nested":         "List[Dict[str, Optional[numpy.ndarray]]]",
		"call":           "field(default_factory=list)",
		"list":           "[1, 2, 3]",
		"dict":           "{'a': 1}",
		"negative":       "-1",
		"string forward": "'MyClass'",
		"bare tuple":     "int, str",
		"ellipsis sub":   "Callable[..., int]",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			e, err := ParseExpr(src)
			require.NoError(t, err)
			require.NotNil(t, e)
		})
	}
}

func TestParseExprStructure(t *testing.T) {
	e, err := ParseExpr("Dict[str, int]")
	require.NoError(t, err)
	sub, ok := e.(*Subscript)
	require.True(t, ok, "expected subscript, got %T", e)

	base, ok := sub.Value.(*Name)
	require.True(t, ok)
	assert.Equal(t, "Dict", base.ID)

	idx, ok := sub.Index.(*TupleExpr)
	require.True(t, ok, "comma index should parse as tuple")
	require.Len(t, idx.Elts, 2)
}

func TestParseExprErrors(t *testing.T) {
	for _, src := range []string{"", "int )", "List[", "def", "a b"} {
		_, err := ParseExpr(src)
		require.Error(t, err, "source %q", src)
		assert.True(t, errors.Is(err, errors.ErrSyntax), "source %q", src)
	}
}

func TestParseSignatureValid(t *testing.T) {
	cases := map[string][]string{
		"foo(x: int) -> int":               {"x"},
		"bar()":                            nil,
		"baz(a, b=1, *args, **kwargs)":     {"a", "b", "args", "kwargs"},
		"qux(x: bint, y: double) -> float": {"x", "y"},
		"kwonly(a, *, b: int = 0)":         {"a", "", "b"},
		"posonly(a, /, b)":                 {"a", "", "b"},
		"__init__(self, n: int) -> None":   {"self", "n"},
	}
	for line, wantNames := range cases {
		t.Run(line, func(t *testing.T) {
			fn, err := ParseSignature(line)
			require.NoError(t, err)
			var names []string
			for _, p := range fn.Params {
				names = append(names, p.Name)
			}
			assert.Equal(t, wantNames, names)
		})
	}
}

func TestParseSignatureInvalid(t *testing.T) {
	cases := []string{
		"Returns the sum of two numbers.",
		"foo(x",
		"foo(x) extra",
		"multi(x)\nline",
		"",
		"foo(x): int",
	}
	for _, line := range cases {
		_, err := ParseSignature(line)
		require.Error(t, err, "line %q", line)
	}
}

func TestParseModuleStubBody(t *testing.T) {
	src := `"""Module docstring."""

VERSION: str

def bar(x: int) -> str: ...

def documented(y: float) -> float:
    """
    Returns y squared.
    """

class Point:
    x: int
    y: int
    def __init__(self, x: int, y: int) -> None: ...
`
	mod, err := ParseModule(src)
	require.NoError(t, err)
	require.Len(t, mod.Body, 5)

	_, ok := mod.Body[0].(*ExprStmt)
	assert.True(t, ok, "docstring should parse as expression statement")

	ann, ok := mod.Body[1].(*AnnAssign)
	require.True(t, ok)
	assert.Equal(t, "VERSION", ann.Target.ID)

	fn, ok := mod.Body[2].(*FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "bar", fn.Name)
	require.Len(t, fn.Body, 1)

	doc, ok := mod.Body[3].(*FunctionDef)
	require.True(t, ok)
	require.Len(t, doc.Body, 1)
	_, ok = doc.Body[0].(*ExprStmt)
	assert.True(t, ok)

	cls, ok := mod.Body[4].(*ClassDef)
	require.True(t, ok)
	assert.Equal(t, "Point", cls.Name)
	require.Len(t, cls.Body, 3)
}

func TestParseModuleImports(t *testing.T) {
	src := "import numpy\nimport os.path as osp\nfrom typing import Optional, List as L\n"
	mod, err := ParseModule(src)
	require.NoError(t, err)
	require.Len(t, mod.Body, 3)

	imp := mod.Body[0].(*ImportStmt)
	assert.Equal(t, "numpy", imp.Module)
	assert.Empty(t, imp.Alias)

	aliased := mod.Body[1].(*ImportStmt)
	assert.Equal(t, "os.path", aliased.Module)
	assert.Equal(t, "osp", aliased.Alias)

	from := mod.Body[2].(*ImportFromStmt)
	assert.Equal(t, "typing", from.Module)
	require.Len(t, from.Names, 2)
	assert.Equal(t, ImportedName{Name: "Optional"}, from.Names[0])
	assert.Equal(t, ImportedName{Name: "List", Alias: "L"}, from.Names[1])
}

func TestParseModuleNestedClass(t *testing.T) {
	src := `class Outer:
    class Inner:
        value: int
    def method(self) -> None: ...
`
	mod, err := ParseModule(src)
	require.NoError(t, err)
	require.Len(t, mod.Body, 1)

	outer := mod.Body[0].(*ClassDef)
	require.Len(t, outer.Body, 2)
	inner, ok := outer.Body[0].(*ClassDef)
	require.True(t, ok)
	assert.Equal(t, "Inner", inner.Name)
	require.Len(t, inner.Body, 1)
}

func TestParseModuleEmpty(t *testing.T) {
	mod, err := ParseModule("")
	require.NoError(t, err)
	assert.Empty(t, mod.Body)

	mod, err = ParseModule("\n\n# only comments\n")
	require.NoError(t, err)
	assert.Empty(t, mod.Body)
}

func TestCollectNames(t *testing.T) {
	mod, err := ParseModule("x: Optional[ndarray]\ndef f(a: int) -> Series: ...\n")
	require.NoError(t, err)
	names := CollectNames(mod)
	assert.Contains(t, names, "Optional")
	assert.Contains(t, names, "ndarray")
	assert.Contains(t, names, "int")
	assert.Contains(t, names, "Series")
	assert.NotContains(t, names, "a", "parameter names are not Name nodes")
	assert.NotContains(t, names, "f", "function names are not Name nodes")
}

func TestRewriteNames(t *testing.T) {
	src := "x: Optional[bint]"
	mod, err := ParseModule(src)
	require.NoError(t, err)

	table := map[string]string{"bint": "bool"}
	out, seen := RewriteNames(src, mod, func(id string) (string, bool) {
		repl, ok := table[id]
		return repl, ok
	})
	assert.Equal(t, "x: Optional[bool]", out)
	assert.Contains(t, seen, "Optional")
	assert.Contains(t, seen, "bool")
	assert.NotContains(t, seen, "bint", "collected names are post-translation")
}

func TestRewriteNamesPreservesUntouchedText(t *testing.T) {
	src := "def f(a: unicode = 'bint') -> Py_ssize_t:\n    \"\"\"docstring mentioning bint\"\"\"\n"
	mod, err := ParseModule(src)
	require.NoError(t, err)

	table := map[string]string{"unicode": "str", "Py_ssize_t": "int", "bint": "bool"}
	out, _ := RewriteNames(src, mod, func(id string) (string, bool) {
		repl, ok := table[id]
		return repl, ok
	})
	assert.Equal(t, "def f(a: str = 'bint') -> int:\n    \"\"\"docstring mentioning bint\"\"\"\n", out,
		"string literals and docstrings must survive untouched")
}
