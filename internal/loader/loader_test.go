package loader

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "sigil/internal/errors"
)

const mathSource = `
@internal
@pure
fn double(x: uint256) -> uint256 {
    return x * 2;
}
`

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestModulePath(t *testing.T) {
	assert.Equal(t, "math.sg", ModulePath("math"))
	assert.Equal(t, filepath.Join("utils", "math.sg"), ModulePath("utils.math"))
}

func TestResolveSearchOrder(t *testing.T) {
	fs := memFs(t, map[string]string{
		"lib/utils/math.sg":    mathSource,
		"vendor/utils/math.sg": mathSource,
		"vendor/only.sg":       mathSource,
	})
	l := New(fs, []string{"lib", "vendor"})

	path, err := l.Resolve("utils.math")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("lib", "utils", "math.sg"), path)

	path, err = l.Resolve("only")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("vendor", "only.sg"), path)

	_, err = l.Resolve("missing")
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
	assert.Contains(t, err.Error(), "lib, vendor")
}

func TestResolveSkipsDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("a/m.sg", 0o755))
	require.NoError(t, afero.WriteFile(fs, "b/m.sg", []byte(mathSource), 0o644))

	path, err := New(fs, []string{"a", "b"}).Resolve("m")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("b", "m.sg"), path)
}

func TestDefaultSearchPath(t *testing.T) {
	l := New(afero.NewMemMapFs(), nil)
	assert.Equal(t, []string{"."}, l.SearchPaths())
}

func TestImport(t *testing.T) {
	fs := memFs(t, map[string]string{"utils/math.sg": mathSource})
	module, err := New(fs, nil).Import("utils.math")
	require.NoError(t, err)
	assert.Equal(t, "utils.math", module.Name)
	assert.NotEmpty(t, module.Items)
}

func TestImportSyntaxError(t *testing.T) {
	fs := memFs(t, map[string]string{"broken.sg": "fn {"})
	_, err := New(fs, nil).Import("broken")
	require.Error(t, err)
	ce, ok := cerrors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, cerrors.ErrorSyntax, ce.Code)
	assert.Equal(t, "broken.sg", ce.Position.Filename)
	assert.Equal(t, 1, ce.Position.Line)
}

func TestCacheSharedAcrossPaths(t *testing.T) {
	fs := memFs(t, map[string]string{"m.sg": mathSource})
	l := New(fs, nil)
	first, err := l.ReadFile("m.sg")
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "m.sg", []byte("changed"), 0o644))
	second, err := l.WithPaths("extra").ReadFile("m.sg")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	l.Invalidate("m.sg")
	third, err := l.ReadFile("m.sg")
	require.NoError(t, err)
	assert.Equal(t, "changed", third)
}

func TestWithPathsOrder(t *testing.T) {
	l := New(afero.NewMemMapFs(), []string{"a"}).WithPaths("b", "c")
	assert.Equal(t, []string{"b", "c", "a"}, l.SearchPaths())
}

func TestReadMissingFile(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), nil).ReadFile("nope.sg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read nope.sg")
}
