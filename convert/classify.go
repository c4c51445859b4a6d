package convert

import (
	"strings"
	"unicode"

	"github.com/sbvh/pyxstub/errors"
	"github.com/sbvh/pyxstub/pysrc"
	"github.com/sbvh/pyxstub/reflected"
)

// Names that carry no API meaning in a stub. Module level and class level
// share one set; a name from the wrong level simply never occurs there.
var disallowedNames = map[string]bool{
	// module level
	"__doc__":      true,
	"__file__":     true,
	"__loader__":   true,
	"__name__":     true,
	"__package__":  true,
	"__pyx_capi__": true,
	"__spec__":     true,
	"__test__":     true,

	// class level
	"__class__":         true,
	"__dir__":           true,
	"__format__":        true,
	"__getstate__":      true,
	"__hash__":          true,
	"__init_subclass__": true,
	"__new__":           true,
	"__reduce__":        true,
	"__reduce_ex__":     true,
	"__setstate__":      true,
	"__sizeof__":        true,
	"__subclasshook__":  true,
	"__weakref__":       true,
}

// Dunder names worth keeping; every other dunder is dropped.
var allowedDunders = map[string]bool{
	"__init__":  true,
	"__len__":   true,
	"__enter__": true,
	"__exit__":  true,
}

// internalPrefix marks compiler-generated helpers.
const internalPrefix = "__pyx_"

func isDunder(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// skipName reports whether a member name is suppressed under every
// classification.
func skipName(name string) bool {
	if disallowedNames[name] || !isIdentifier(name) || strings.HasPrefix(name, internalPrefix) {
		return true
	}
	if isDunder(name) && !allowedDunders[name] {
		return true
	}
	return false
}

// classifyMember maps one (name, value) pair to a stub element, or nil when
// the member should not appear in output. Classes take precedence over
// functions, functions over descriptors, descriptors over plain values.
func classifyMember(name string, v reflected.Value) (segment, error) {
	if skipName(name) {
		return nil, nil
	}

	switch v.Kind() {
	case reflected.KindClass:
		cls, ok := v.(reflected.Container)
		if !ok {
			return nil, errors.NewInvalidContainerError("class member %q does not expose its members", name)
		}
		return &classSeg{name: name, class: cls}, nil
	case reflected.KindFunction:
		return &functionSeg{name: name, value: v}, nil
	case reflected.KindDescriptor:
		return &annotationSeg{name: name, typeExpr: descriptorType(name, v)}, nil
	default:
		return &annotationSeg{name: name, typeExpr: instanceType(v)}, nil
	}
}

// descriptorType seeds a property-like attribute's type from documentation
// of the form "<name>: <type>". Anything else yields the untyped placeholder.
func descriptorType(name string, v reflected.Value) string {
	line, _, _ := strings.Cut(v.Doc(), "\n")
	if rest, ok := strings.CutPrefix(line, name+": "); ok && strings.TrimSpace(rest) != "" {
		return strings.TrimSpace(rest)
	}
	return "object"
}

// instanceType infers a plain value's annotation from its runtime class
// name. Modules and typeless values fall back to the untyped placeholder.
func instanceType(v reflected.Value) string {
	if v.Kind() == reflected.KindModule {
		return "object"
	}
	if t := v.TypeName(); t != "" {
		return t
	}
	return "object"
}

// recoverSignature produces a definition line "name(params) -> ret" and the
// docstring text that should accompany it. An embedded signature on the
// docstring's first line wins over runtime introspection; introspection
// failure degrades to a generic placeholder.
func recoverSignature(name string, v reflected.Value) (definition, description string) {
	doc := v.Doc()

	if doc != "" {
		first, rest, _ := strings.Cut(doc, "\n")
		if _, err := pysrc.ParseSignature(first); err == nil {
			return first, rest
		}
		return introspect(name, v), doc
	}
	return introspect(name, v), ""
}

func introspect(name string, v reflected.Value) string {
	if c, ok := v.(reflected.Callable); ok {
		if sig, err := c.Signature(); err == nil {
			return name + sig
		}
	}
	return name + "(*args, **kwargs)"
}
