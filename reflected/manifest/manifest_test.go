package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbvh/pyxstub/errors"
	"github.com/sbvh/pyxstub/reflected"
)

const jsonManifest = `{
  "modules": [
    {
      "name": "pkg.geom",
      "path": "pkg/geom.pyx",
      "doc": "Geometry kernels.",
      "members": [
        {"name": "np", "value": {"kind": "module", "name": "numpy"}},
        {"name": "area", "value": {"kind": "function", "doc": "area(p) -> double", "signature": "(p)"}},
        {"name": "Polygon", "value": {
          "kind": "class", "name": "Polygon", "module": "pkg.geom",
          "members": [
            {"name": "closed", "value": {"kind": "descriptor", "doc": "closed: bint"}}
          ],
          "annotations": [{"name": "n", "type": "int"}]
        }}
      ],
      "annotations": [{"name": "EPSILON", "type": "double"}],
      "extra_types": [{"kind": "class", "name": "ndarray", "module": "numpy"}]
    }
  ]
}`

const yamlManifest = `modules:
  - name: pkg.geom
    path: pkg/geom.pyx
    members:
      - name: f
        value:
          kind: function
          doc: "f() -> None"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	f, err := Load(writeFile(t, "manifest.json", jsonManifest))
	require.NoError(t, err)
	require.Len(t, f.Modules, 1)

	m := f.Modules[0].Reflected()
	assert.Equal(t, "pkg.geom", m.Name())
	assert.Equal(t, "Geometry kernels.", m.Doc())
	assert.Equal(t, reflected.KindModule, m.Kind())
	require.Len(t, m.Members(), 3)
	require.Len(t, m.Annotations(), 1)
	assert.Equal(t, reflected.AnnotationDecl{Name: "EPSILON", Type: "double"}, m.Annotations()[0])
	require.Len(t, m.ExtraTypeSources(), 1)
}

func TestLoadYAML(t *testing.T) {
	f, err := Load(writeFile(t, "manifest.yaml", yamlManifest))
	require.NoError(t, err)
	require.Len(t, f.Modules, 1)
	assert.Equal(t, "pkg.geom", f.Modules[0].Reflected().Name())
	assert.Equal(t, "pkg/geom.pyx", f.Modules[0].Path)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "manifest.toml", "x = 1"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "broken.json", "{"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "unnamed.json", `{"modules": [{"doc": "no name"}]}`))
	require.Error(t, err)
}

func TestObjectCapabilities(t *testing.T) {
	f, err := Load(writeFile(t, "manifest.json", jsonManifest))
	require.NoError(t, err)
	members := f.Modules[0].Reflected().Members()

	np := members[0].Value
	assert.Equal(t, reflected.KindModule, np.Kind())
	name, ok := np.(reflected.Named).OwnName()
	require.True(t, ok)
	assert.Equal(t, "numpy", name)
	_, ok = np.(reflected.ModuleScoped).OwningModule()
	assert.False(t, ok, "a bare module carries no owning module")

	area := members[1].Value
	assert.Equal(t, reflected.KindFunction, area.Kind())
	sig, err := area.(reflected.Callable).Signature()
	require.NoError(t, err)
	assert.Equal(t, "(p)", sig)

	poly := members[2].Value
	assert.Equal(t, reflected.KindClass, poly.Kind())
	owner, ok := poly.(reflected.ModuleScoped).OwningModule()
	require.True(t, ok)
	assert.Equal(t, "pkg.geom", owner)
	cls, ok := poly.(reflected.Container)
	require.True(t, ok)
	require.Len(t, cls.Members(), 1)
	require.Len(t, cls.Annotations(), 1)
}

func TestSignatureAbsent(t *testing.T) {
	v := objectView{&Object{Kind: "function"}}
	_, err := v.Signature()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoSignature))
}
