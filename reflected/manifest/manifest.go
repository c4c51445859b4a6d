// Package manifest loads reflected module snapshots from JSON or YAML
// files. A snapshot is produced by the Python-side build collaborator after
// importing the compiled extension modules; loading one yields
// reflected.Module values the conversion engine can consume without a
// Python runtime in the process.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sbvh/pyxstub/errors"
	"github.com/sbvh/pyxstub/reflected"
)

// File is the top-level snapshot document.
type File struct {
	Modules []*Module `json:"modules" yaml:"modules"`
}

// Module is one reflected extension module in a snapshot. Path is the
// originating .pyx file, relative to the manifest's directory when not
// absolute.
type Module struct {
	Name        string       `json:"name" yaml:"name"`
	Path        string       `json:"path,omitempty" yaml:"path,omitempty"`
	Doc         string       `json:"doc,omitempty" yaml:"doc,omitempty"`
	Members     []NamedValue `json:"members,omitempty" yaml:"members,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	ExtraTypes  []*Object    `json:"extra_types,omitempty" yaml:"extra_types,omitempty"`
}

// NamedValue is one (binding name, value) member pair.
type NamedValue struct {
	Name  string  `json:"name" yaml:"name"`
	Value *Object `json:"value" yaml:"value"`
}

// Annotation is one declared annotation entry.
type Annotation struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Object is a snapshotted reflected value. Pointer fields distinguish an
// absent attribute from an empty one, mirroring hasattr semantics.
type Object struct {
	Kind        string       `json:"kind" yaml:"kind"`
	Name        *string      `json:"name,omitempty" yaml:"name,omitempty"`
	Module      *string      `json:"module,omitempty" yaml:"module,omitempty"`
	Doc         string       `json:"doc,omitempty" yaml:"doc,omitempty"`
	Type        string       `json:"type,omitempty" yaml:"type,omitempty"`
	Signature   *string      `json:"signature,omitempty" yaml:"signature,omitempty"`
	Members     []NamedValue `json:"members,omitempty" yaml:"members,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Load reads a snapshot file, dispatching on extension: .json, or .yaml/.yml.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrapf(err, "parsing manifest %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrapf(err, "parsing manifest %s", path)
		}
	default:
		return nil, errors.Newf("manifest %s: unsupported extension (want .json, .yaml or .yml)", path)
	}
	for _, m := range f.Modules {
		if m == nil || m.Name == "" {
			return nil, errors.Newf("manifest %s: module entry without a name", path)
		}
	}
	return &f, nil
}

// Reflected adapts the snapshot module to the engine's view of it.
func (m *Module) Reflected() reflected.Module {
	return moduleView{m}
}

type moduleView struct {
	m *Module
}

var _ reflected.Module = moduleView{}

func (v moduleView) Kind() reflected.Kind { return reflected.KindModule }
func (v moduleView) TypeName() string     { return "module" }
func (v moduleView) Doc() string          { return v.m.Doc }
func (v moduleView) Name() string         { return v.m.Name }

func (v moduleView) Members() []reflected.Member {
	out := make([]reflected.Member, 0, len(v.m.Members))
	for _, nv := range v.m.Members {
		out = append(out, reflected.Member{Name: nv.Name, Value: objectView{nv.Value}})
	}
	return out
}

func (v moduleView) Annotations() []reflected.AnnotationDecl {
	return annotationDecls(v.m.Annotations)
}

func (v moduleView) ExtraTypeSources() []reflected.Value {
	out := make([]reflected.Value, 0, len(v.m.ExtraTypes))
	for _, o := range v.m.ExtraTypes {
		out = append(out, objectView{o})
	}
	return out
}

func annotationDecls(anns []Annotation) []reflected.AnnotationDecl {
	out := make([]reflected.AnnotationDecl, 0, len(anns))
	for _, a := range anns {
		out = append(out, reflected.AnnotationDecl{Name: a.Name, Type: a.Type})
	}
	return out
}

// objectView adapts a snapshot value. It implements every capability
// interface; absence is reported through the ok flags so a nil Name field
// behaves like a missing __name__ attribute.
type objectView struct {
	o *Object
}

var (
	_ reflected.Value        = objectView{}
	_ reflected.Named        = objectView{}
	_ reflected.ModuleScoped = objectView{}
	_ reflected.Callable     = objectView{}
	_ reflected.Container    = objectView{}
)

func (v objectView) Kind() reflected.Kind {
	if v.o == nil {
		return reflected.KindObject
	}
	switch v.o.Kind {
	case "module":
		return reflected.KindModule
	case "class":
		return reflected.KindClass
	case "function":
		return reflected.KindFunction
	case "descriptor":
		return reflected.KindDescriptor
	default:
		return reflected.KindObject
	}
}

func (v objectView) TypeName() string {
	if v.o == nil {
		return ""
	}
	return v.o.Type
}

func (v objectView) Doc() string {
	if v.o == nil {
		return ""
	}
	return v.o.Doc
}

func (v objectView) OwnName() (string, bool) {
	if v.o == nil || v.o.Name == nil {
		return "", false
	}
	return *v.o.Name, true
}

func (v objectView) OwningModule() (string, bool) {
	if v.o == nil || v.o.Module == nil {
		return "", false
	}
	return *v.o.Module, true
}

func (v objectView) Signature() (string, error) {
	if v.o == nil || v.o.Signature == nil {
		return "", errors.ErrNoSignature
	}
	return *v.o.Signature, nil
}

func (v objectView) Members() []reflected.Member {
	if v.o == nil {
		return nil
	}
	out := make([]reflected.Member, 0, len(v.o.Members))
	for _, nv := range v.o.Members {
		out = append(out, reflected.Member{Name: nv.Name, Value: objectView{nv.Value}})
	}
	return out
}

func (v objectView) Annotations() []reflected.AnnotationDecl {
	if v.o == nil {
		return nil
	}
	return annotationDecls(v.o.Annotations)
}
