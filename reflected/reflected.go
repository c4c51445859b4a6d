// Package reflected defines the capability-checked adapter interfaces over
// reflected runtime objects: the in-memory result of loading a compiled
// Cython extension module, as seen through the host's introspection
// facility.
//
// The conversion engine (package convert) consumes only these interfaces, so
// all reflection-API specifics live behind this boundary. Every view is
// read-only; the engine never mutates the objects it inspects.
package reflected

// Kind classifies a reflected value's shape.
type Kind int

const (
	// KindObject is a plain instance: not a type object, not callable.
	KindObject Kind = iota
	// KindModule is a module object (a nested module reference is always
	// treated as an import, never as an owned member).
	KindModule
	// KindClass is a type object with its own members and annotations.
	KindClass
	// KindFunction is a function, method, or bound native routine.
	KindFunction
	// KindDescriptor is a property-like attribute with get/set semantics.
	KindDescriptor
)

// String returns the Python-flavored name for a kind.
func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindDescriptor:
		return "descriptor"
	default:
		return "object"
	}
}

// Value is a read-only view of one reflected runtime object.
type Value interface {
	// Kind reports the value's shape.
	Kind() Kind
	// TypeName is the runtime class name of the value (e.g. "int" for an
	// integer constant). Used for best-effort annotation of plain instances.
	TypeName() string
	// Doc is the raw documentation text, "" when absent.
	Doc() string
}

// Named is implemented by values that carry their own __name__.
type Named interface {
	OwnName() (string, bool)
}

// ModuleScoped is implemented by values that carry an owning-module name
// (__module__). A member whose owning module differs from the container it
// was found in is a re-export, not an owned member.
type ModuleScoped interface {
	OwningModule() (string, bool)
}

// Callable exposes runtime signature introspection. Signature returns the
// parameter list and optional return annotation exactly as the host's
// inspect facility would spell it, e.g. "(x: int, y: float = 1.0) -> str".
// Native callables without signature metadata return errors.ErrNoSignature.
type Callable interface {
	Value
	Signature() (string, error)
}

// Member is a (name, value) pair sourced from a container.
type Member struct {
	Name  string
	Value Value
}

// AnnotationDecl is one declared annotation from a container's own
// annotation metadata (__annotations__), with the type already spelled as
// source text.
type AnnotationDecl struct {
	Name string
	Type string
}

// Container enumerates a module's or class's attribute members. Enumeration
// order carries no meaning; the engine imposes its own total order.
type Container interface {
	Value
	Members() []Member
	Annotations() []AnnotationDecl
}

// Class is a reflected type object.
type Class interface {
	Container
	Named
	ModuleScoped
}

// Module is a reflected module object, the root of one conversion.
type Module interface {
	Container
	// Name is the module's __name__ (dotted import path).
	Name() string
	// ExtraTypeSources lists objects that exist only to be imported for
	// annotation purposes (the __cimport_types__ convention) and are not
	// reachable through normal member enumeration.
	ExtraTypeSources() []Value
}
