package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterSource = `count: public(uint256);

@external
fn bump() {
    self.count += 1;
}
`

// execute runs the root command against an in-memory filesystem and
// restores every flag it may have changed.
func execute(t *testing.T, files map[string]string, args ...string) (string, string, error) {
	t.Helper()

	memFs := afero.NewMemMapFs()
	for path, text := range files {
		require.NoError(t, afero.WriteFile(memFs, path, []byte(text), 0o644))
	}
	saved := fs
	fs = memFs
	t.Cleanup(func() {
		fs = saved
		RootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			}
		})
	})

	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs(append(args, "--color=false"))
	err := RootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSelector(t *testing.T) {
	out, _, err := execute(t, nil, "selector", "transfer(address to, uint amount)", "owner()")
	require.NoError(t, err)
	assert.Equal(t, "0xa9059cbb transfer(address,uint256)\n0x8da5cb5b owner()\n", out)

	_, _, err = execute(t, nil, "selector", "transfer(")
	require.Error(t, err)
	assert.NotEqual(t, ErrReported, err)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sigil "+Version), out)
}

func TestCompile(t *testing.T) {
	files := map[string]string{"/src/counter.sg": counterSource}

	t.Run("method identifiers", func(t *testing.T) {
		out, stderr, err := execute(t, files, "compile", "/src/counter.sg", "--format", "method_identifiers")
		require.NoError(t, err)
		assert.Contains(t, out, `"count()": "0x06661abd"`)
		assert.Contains(t, stderr, "Successfully compiled /src/counter.sg")
	})

	t.Run("default command", func(t *testing.T) {
		out, _, err := execute(t, files, "/src/counter.sg")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "0x"), out)
		assert.NotContains(t, out, "=======")
	})

	t.Run("several formats", func(t *testing.T) {
		out, _, err := execute(t, files, "/src/counter.sg", "-f", "bytecode_runtime,layout")
		require.NoError(t, err)
		assert.Contains(t, out, "======= bytecode_runtime =======")
		assert.Contains(t, out, "======= layout =======")
		assert.Contains(t, out, `"name": "count"`)
	})
}

func TestCompileFailure(t *testing.T) {
	files := map[string]string{"/src/broken.sg": "count: uint256\n"}

	out, stderr, err := execute(t, files, "compile", "/src/broken.sg")
	assert.Equal(t, ErrReported, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "E0001")
	assert.Contains(t, stderr, "/src/broken.sg:")
	assert.Contains(t, stderr, "Compilation failed")

	_, stderr, err = execute(t, nil, "compile", "/src/missing.sg")
	assert.Equal(t, ErrReported, err)
	assert.Contains(t, stderr, "error")
}

func TestInvalidSettings(t *testing.T) {
	files := map[string]string{"/src/counter.sg": counterSource}

	for _, args := range [][]string{
		{"--log_level", "loud"},
		{"--optimize", "fastest"},
		{"--format", "wasm"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, _, err := execute(t, files, append([]string{"/src/counter.sg"}, args...)...)
			assert.Error(t, err)
			assert.NotEqual(t, ErrReported, err)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Nanosecond, "500ns"},
		{1500 * time.Nanosecond, "1.5μs"},
		{2500 * time.Microsecond, "2.5ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1.50min"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatDuration(tc.in))
	}
}
