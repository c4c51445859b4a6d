package stubgen

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbvh/pyxstub/reflected/manifest"
)

func strp(s string) *string { return &s }

func sampleModule(name string) *manifest.Module {
	return &manifest.Module{
		Name: name,
		Members: []manifest.NamedValue{
			{Name: "unused", Value: &manifest.Object{Kind: "class", Name: strp("unused"), Module: strp("lib")}},
			{Name: "f", Value: &manifest.Object{Kind: "function", Doc: "f(x: int) -> int"}},
		},
	}
}

func TestStubPath(t *testing.T) {
	assert.Equal(t, filepath.Join("pkg", "geom.pyi"), StubPath(filepath.Join("pkg", "geom.pyx"), ""))
	assert.Equal(t, filepath.Join("out", "geom.pyi"), StubPath(filepath.Join("pkg", "geom.pyx"), "out"))
	assert.Equal(t, filepath.Join("pkg", "__cinit__.pyi"), StubPath(filepath.Join("pkg", "__cinit__.pyx"), ""))
}

func TestGenerateWritesStubs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "geom.pyx")

	res, err := Generate([]ModuleSource{
		{Module: sampleModule("geom").Reflected(), Path: src},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, res.Written, 1)
	assert.Zero(t, res.Failed)

	data, err := os.ReadFile(filepath.Join(dir, "geom.pyi"))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# This file was generated by pyxstub v")
	assert.Contains(t, out, "def f(x: int) -> int: ...")
	assert.NotContains(t, out, "from lib import unused", "unreferenced imports are pruned")
	assert.Equal(t, byte('\n'), data[len(data)-1], "stub files end with a newline")
}

func TestGenerateCinitKeepsImports(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "__cinit__.pyx")

	res, err := Generate([]ModuleSource{
		{Module: sampleModule("pkg").Reflected(), Path: src},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	data, err := os.ReadFile(filepath.Join(dir, "__cinit__.pyi"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "from lib import unused",
		"__cinit__ modules keep every import candidate")
}

func TestGenerateOutDir(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "stubs")

	res, err := Generate([]ModuleSource{
		{Module: sampleModule("geom").Reflected(), Path: filepath.Join(srcDir, "geom.pyx")},
	}, Options{OutDir: outDir})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(outDir, "geom.pyi")}, res.Written)

	_, err = os.Stat(filepath.Join(outDir, "geom.pyi"))
	require.NoError(t, err)
}

func TestGenerateContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()

	res, err := Generate([]ModuleSource{
		{Module: nil, Path: filepath.Join(dir, "broken.pyx")},
		{Module: sampleModule("geom").Reflected(), Path: filepath.Join(dir, "geom.pyx")},
	}, Options{})
	require.Error(t, err)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Written, 1, "the batch continues past a failing module")

	_, statErr := os.Stat(filepath.Join(dir, "geom.pyi"))
	require.NoError(t, statErr)
}

func TestWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"modules": []}`), 0o644))

	fired := make(chan struct{}, 1)
	w, err := NewWatcher(path, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Stop()
	w.Start()

	require.NoError(t, os.WriteFile(path, []byte(`{"modules": []}`), 0o644))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire after manifest write")
	}
}
