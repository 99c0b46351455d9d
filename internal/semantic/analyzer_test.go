package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/errors"
	"sigil/internal/types"
)

func TestAnalyzeModuleDeclarations(t *testing.T) {
	p := mustAnalyze(t, `
SIZE: constant(uint256) = 4;
owner: public(address);
values: DynArray[uint256, SIZE];
balances: HashMap[address, uint256];

@external
fn __init__() {
    self.owner = msg.sender;
}

@external
@payable
fn __default__() {
    pass;
}

@external
fn store(v: uint256) {
    self.values.append(v);
}
`)
	root := p.Root
	require.NotNil(t, root.Constructor)
	require.NotNil(t, root.Fallback)
	require.Len(t, root.Constants, 1)
	assert.Equal(t, "4", root.Constants[0].Value.String())

	values, ok := root.StateVar("values")
	require.True(t, ok)
	assert.Equal(t, types.DArrayT{Elem: types.Uint256, Count: 4}, values.Type)

	require.Len(t, root.Getters, 1)
	assert.Equal(t, "owner", root.Getters[0].Name)

	var names []string
	for _, f := range root.RuntimeEntryPoints() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"__default__", "store", "owner"}, names)
	assert.Equal(t, root, p.Owner(root.Getters[0]))
}

func TestAnalyzeDuplicateDeclaration(t *testing.T) {
	_, err := analyze(t, `
count: uint256;

@external
fn count() {
    pass;
}
`)
	requireCode(t, err, errors.ErrorDuplicateDeclaration)
}

func TestAnalyzeReservedName(t *testing.T) {
	_, err := analyze(t, `
@external
fn f(msg: uint256) {
    pass;
}
`)
	ce := requireCode(t, err, errors.ErrorDuplicateDeclaration)
	assert.Contains(t, ce.Message, "reserved")
}

func TestAnalyzeStateInitializerRejected(t *testing.T) {
	_, err := analyze(t, `
count: uint256 = 1;
`)
	ce := requireCode(t, err, errors.ErrorStructure)
	require.NotEmpty(t, ce.Suggestions)
}

func TestAnalyzeConstants(t *testing.T) {
	t.Run("out of range", func(t *testing.T) {
		_, err := analyze(t, `SMALL: constant(uint8) = 256;`)
		requireCode(t, err, errors.ErrorInvalidLiteral)
	})
	t.Run("not constant", func(t *testing.T) {
		_, err := analyze(t, `A: constant(address) = msg.sender;`)
		requireCode(t, err, errors.ErrorInvalidConstant)
	})
	t.Run("refers to earlier constant", func(t *testing.T) {
		p := mustAnalyze(t, `
A: constant(uint256) = 3;
B: constant(uint256) = A * 2;
`)
		b, ok := p.Root.Constant("B")
		require.True(t, ok)
		assert.Equal(t, "6", b.Value.String())
	})
}

func TestAnalyzeSelectorCollision(t *testing.T) {
	_, err := analyze(t, `
@external
fn gsf() {
    pass;
}

@external
fn tgeo() {
    pass;
}
`)
	ce := requireCode(t, err, errors.ErrorSelectorCollision)
	assert.Contains(t, ce.Message, "0x67e43e43")
	assert.Contains(t, ce.Message, "gsf()")
	assert.Contains(t, ce.Message, "tgeo()")
}

func TestAnalyzeSelectorCollisionWithGetter(t *testing.T) {
	_, err := analyze(t, `
OwnerTransferV7b711143: public(HashMap[uint256, uint256]);

@external
fn withdraw(amount: uint256) {
    pass;
}
`)
	requireCode(t, err, errors.ErrorSelectorCollision)
}

const tokenSource = `
interface Token {
    fn balance() -> uint256: view;
    fn transfer(to: address, amount: uint256) -> bool: nonpayable;
}

implements: Token;
`

func TestAnalyzeImplements(t *testing.T) {
	t.Run("satisfied by function and getter", func(t *testing.T) {
		p := mustAnalyze(t, tokenSource+`
balance: public(uint256);

@external
fn transfer(to: address, amount: uint256) -> bool {
    return true;
}
`)
		require.Len(t, p.Root.Implements, 1)
		assert.Equal(t, "Token", p.Root.Implements[0].Name)
	})

	t.Run("missing member", func(t *testing.T) {
		_, err := analyze(t, tokenSource+`
balance: public(uint256);
`)
		requireCode(t, err, errors.ErrorInterfaceNotImplemented)
	})

	t.Run("unknown interface", func(t *testing.T) {
		_, err := analyze(t, `implements: Missing;`)
		requireCode(t, err, errors.ErrorUndefinedName)
	})
}

func TestAnalyzeRecursionRejected(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		_, err := analyze(t, `
@internal
fn loop(n: uint256) -> uint256 {
    return self.loop(n);
}
`)
		ce := requireCode(t, err, errors.ErrorCallViolation)
		assert.Contains(t, ce.Message, "cyclic")
	})

	t.Run("mutual", func(t *testing.T) {
		_, err := analyze(t, `
@internal
fn ping() {
    self.pong();
}

@internal
fn pong() {
    self.ping();
}
`)
		requireCode(t, err, errors.ErrorCallViolation)
	})
}

const mathLibrary = `
BASE: constant(uint256) = 100;

@internal
@pure
fn scale(x: uint256) -> uint256 {
    return x * BASE;
}

@internal
@pure
fn twice(x: uint256) -> uint256 {
    return self.scale(x) * 2;
}
`

func TestAnalyzeLibraryImport(t *testing.T) {
	p, err := analyzeWith(t, mapImporter{"utils.math": mathLibrary}, `
import utils.math as m;

@external
@pure
fn f(x: uint256) -> uint256 {
    return m.twice(x) + m.BASE;
}
`)
	require.NoError(t, err)
	require.Len(t, p.Libraries, 1)
	lib := p.Libraries[0]
	assert.True(t, lib.IsLibrary)
	assert.Equal(t, "utils.math", lib.Name)

	twice, ok := lib.Function("twice")
	require.True(t, ok)
	assert.Equal(t, "utils.math", twice.Module)
	assert.Equal(t, lib, p.Owner(twice))

	f, _ := p.Root.Function("f")
	assert.Equal(t, []string{"twice", "scale"}, names(p.CallGraph.Reachable(f)))
	assert.Len(t, p.Modules(), 2)
}

func TestAnalyzeLibraryRestrictions(t *testing.T) {
	cases := map[string]string{
		"state variable": `count: uint256;`,
		"external":       "@external\nfn f() {\n    pass;\n}\n",
		"implements":     "interface I {\n    fn f(): view;\n}\nimplements: I;\n",
	}
	for name, lib := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := analyzeWith(t, mapImporter{"lib": lib}, "import lib;\n")
			requireCode(t, err, errors.ErrorStructure)
		})
	}
}

func TestAnalyzeImportErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := analyzeWith(t, mapImporter{}, "import nowhere;\n")
		ce := requireCode(t, err, errors.ErrorModuleNotFound)
		assert.Contains(t, ce.Notes, "no file for nowhere")
	})

	t.Run("no importer", func(t *testing.T) {
		_, err := analyze(t, "import nowhere;\n")
		requireCode(t, err, errors.ErrorModuleNotFound)
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := analyzeWith(t, mapImporter{
			"a": "import b;\n",
			"b": "import a;\n",
		}, "import a;\n")
		requireCode(t, err, errors.ErrorImportCycle)
	})

	t.Run("syntax error passes through", func(t *testing.T) {
		_, err := analyzeWith(t, mapImporter{"broken": "fn {"}, "import broken;\n")
		requireCode(t, err, errors.ErrorSyntax)
	})
}
