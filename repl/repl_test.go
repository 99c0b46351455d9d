package repl

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/compiler"
)

func session(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	c := compiler.New(afero.NewMemMapFs(), compiler.DefaultSettings())
	return NewSession(c, &out), &out
}

func TestComplete(t *testing.T) {
	assert.True(t, Complete("count: uint256;"))
	assert.False(t, Complete("@external\nfn f() {"))
	assert.False(t, Complete("fn f() {\n    if true {\n    }"))
	assert.True(t, Complete("fn f() {\n    pass;\n}"))
}

func TestDeclarationsAccumulate(t *testing.T) {
	s, out := session(t)

	assert.False(t, s.Execute("count: public(uint256);"))
	assert.Contains(t, out.String(), "0x06661abd count()")
	assert.Contains(t, out.String(), "ok")

	out.Reset()
	s.Execute("@external\nfn bump() {\n    self.count += 1;\n}")
	assert.Contains(t, out.String(), "bump()")
	assert.Equal(t, []string{"count: public(uint256);", "@external\nfn bump() {\n    self.count += 1;\n}"}, s.accepted)
}

func TestRejectedInputIsDropped(t *testing.T) {
	s, out := session(t)
	s.Execute("count: uint256;")
	out.Reset()

	s.Execute("@external\nfn f() {\n    self.missing = 1;\n}")
	assert.Contains(t, out.String(), "error")
	assert.Len(t, s.accepted, 1)
}

func TestCommands(t *testing.T) {
	s, out := session(t)

	s.Execute(":selector transfer(address to, uint amount)")
	assert.Equal(t, "0xa9059cbb transfer(address,uint256)\n", out.String())

	out.Reset()
	s.Execute(":selector transfer(")
	assert.Contains(t, out.String(), "error:")

	out.Reset()
	s.Execute("owner: public(address);")
	out.Reset()
	s.Execute(":show layout")
	assert.Contains(t, out.String(), `"name": "owner"`)

	out.Reset()
	s.Execute(":show wasm")
	assert.Contains(t, out.String(), "unknown output format")

	out.Reset()
	s.Execute(":source")
	assert.Equal(t, "owner: public(address);\n", out.String())

	s.Execute(":reset")
	assert.Empty(t, s.Source())

	out.Reset()
	s.Execute(":frobnicate")
	assert.Contains(t, out.String(), "unknown command :frobnicate")

	out.Reset()
	s.Execute(":help")
	assert.Contains(t, out.String(), ":selector")

	assert.True(t, s.Execute(":quit"))
	assert.False(t, s.Execute("   "))
}

func TestCompleter(t *testing.T) {
	require.NotNil(t, completer())
	assert.Len(t, completer().GetChildren(), 6)
}
