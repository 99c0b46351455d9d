package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/errors"
	"sigil/internal/types"
)

func TestMutabilityRules(t *testing.T) {
	cases := []struct {
		name   string
		source string
		code   string
	}{
		{"view writes state", `
count: uint256;
@external
@view
fn f() {
    self.count = 1;
}
`, errors.ErrorStateAccessViolation},
		{"pure reads state", `
count: uint256;
@external
@pure
fn f() -> uint256 {
    return self.count;
}
`, errors.ErrorStateAccessViolation},
		{"pure reads environment", `
@external
@pure
fn f() -> address {
    return msg.sender;
}
`, errors.ErrorStateAccessViolation},
		{"view calls mutating", `
count: uint256;
@external
@view
fn f() {
    self.bump();
}
@internal
fn bump() {
    self.count += 1;
}
`, errors.ErrorStateAccessViolation},
		{"msg.value outside payable", `
@external
fn f() -> uint256 {
    return msg.value;
}
`, errors.ErrorStateAccessViolation},
		{"external via self", `
@external
fn f() {
    self.g();
}
@external
fn g() {
    pass;
}
`, errors.ErrorCallViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := analyze(t, tc.source)
			requireCode(t, err, tc.code)
		})
	}
}

func TestPayableMayReadValue(t *testing.T) {
	mustAnalyze(t, `
deposits: HashMap[address, uint256];

@external
@payable
fn deposit() {
    self.deposits[msg.sender] += msg.value;
}
`)
}

func TestImmutableTargets(t *testing.T) {
	cases := map[string]string{
		"loop variable": `
@external
fn f() {
    for i: uint256 in [1, 2] {
        i = 3;
    }
}
`,
		"argument": `
@external
fn f(x: uint256) {
    x = 1;
}
`,
		"constant": `
LIMIT: constant(uint256) = 5;
@external
fn f() {
    self.LIMIT = 1;
}
`,
		"environment": `
@external
fn f() {
    msg.sender = self;
}
`,
		"whole mapping": `
a: HashMap[address, uint256];
b: HashMap[address, uint256];
@external
fn f() {
    self.a = self.b;
}
`,
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := analyze(t, source)
			requireCode(t, err, errors.ErrorImmutableViolation)
		})
	}
}

func TestLiteralChecks(t *testing.T) {
	t.Run("out of range", func(t *testing.T) {
		_, err := analyze(t, "@external\nfn f() {\n    x: uint8 = 256;\n}\n")
		requireCode(t, err, errors.ErrorInvalidLiteral)
	})
	t.Run("negative unsigned", func(t *testing.T) {
		_, err := analyze(t, "@external\nfn f() {\n    x: uint256 = -1;\n}\n")
		requireCode(t, err, errors.ErrorInvalidLiteral)
	})
	t.Run("wrong kind", func(t *testing.T) {
		_, err := analyze(t, "@external\nfn f() {\n    x: bool = 1;\n}\n")
		requireCode(t, err, errors.ErrorTypeMismatch)
	})
	t.Run("string too long", func(t *testing.T) {
		_, err := analyze(t, "@external\nfn f() {\n    x: String[3] = \"four\";\n}\n")
		requireCode(t, err, errors.ErrorInvalidLiteral)
	})
	t.Run("static array length", func(t *testing.T) {
		_, err := analyze(t, "@external\nfn f() {\n    x: uint256[3] = [1, 2];\n}\n")
		requireCode(t, err, errors.ErrorTypeMismatch)
	})
	t.Run("constant index out of bounds", func(t *testing.T) {
		_, err := analyze(t, "values: uint256[3];\n@external\nfn f() {\n    self.values[3] = 1;\n}\n")
		requireCode(t, err, errors.ErrorInvalidLiteral)
	})
}

func TestExpressionTypes(t *testing.T) {
	p := mustAnalyze(t, `
small: int128;

@external
@view
fn f(a: uint8, b: uint8) -> bool {
    c: uint8 = a + b * 2;
    d: int128 = -self.small;
    return c > 3 and d != 0;
}
`)
	require.Len(t, p.Locals, 2)
	for decl, typ := range p.Locals {
		switch decl.Name.Value {
		case "c":
			assert.Equal(t, types.Uint8, typ)
			assert.Equal(t, types.Uint8, p.Types[decl.Value])
		case "d":
			assert.Equal(t, types.Int128, typ)
		}
	}
}

func TestExpressionErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		code string
	}{
		{"mixed widths", "a: uint8 = 1;\n    b: uint256 = 2;\n    c: uint256 = a + b;", errors.ErrorTypeMismatch},
		{"unsigned negation", "a: uint256 = 1;\n    b: uint256 = -a;", errors.ErrorInvalidOperation},
		{"bool arithmetic", "a: bool = true;\n    b: bool = a + a;", errors.ErrorInvalidOperation},
		{"undefined name", "a: uint256 = missing;", errors.ErrorUndefinedName},
		{"unknown member", "a: uint256 = self.missing;", errors.ErrorUnknownMember},
		{"unknown environment member", "a: uint256 = block.height;", errors.ErrorUnknownMember},
		{"bare builtin", "a: uint256 = len;", errors.ErrorNotCallable},
		{"no effect", "1 + 2;", errors.ErrorStructure},
		{"range outside loop", "a: uint256 = range(3);", errors.ErrorStructure},
		{"len of integer", "a: uint256 = len(1);", errors.ErrorTypeMismatch},
		{"builtin keyword", "a: uint256 = min(1, 2, bound=3);", errors.ErrorUnknownKeyword},
		{"constant overflow", "a: uint256 = 2 ** 256;", errors.ErrorInvalidOperation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := analyze(t, "@external\nfn f() {\n    "+tc.body+"\n}\n")
			requireCode(t, err, tc.code)
		})
	}
}

func TestBuiltinCalls(t *testing.T) {
	p := mustAnalyze(t, `
values: DynArray[int128, 8];

@external
@view
fn f(x: int128) -> int128 {
    n: uint256 = len(self.values);
    return max(x, -5) + min(x, 7);
}
`)
	var builtins []string
	for _, info := range p.Calls {
		if info.Kind == CallBuiltin {
			builtins = append(builtins, info.Builtin)
		}
	}
	assert.ElementsMatch(t, []string{"len", "max", "min"}, builtins)
}

func TestExternalCalls(t *testing.T) {
	p := mustAnalyze(t, `
interface Token {
    fn transfer(to: address, amount: uint256) -> bool: nonpayable;
    fn balanceOf(owner: address) -> uint256: view;
}

token: Token;

@external
fn __init__(addr: address) {
    self.token = Token(addr);
}

@external
fn send(to: address) -> bool {
    return self.token.transfer(to, self.token.balanceOf(self), gas=50000);
}
`)
	kinds := make(map[CallKind]int)
	for _, info := range p.Calls {
		kinds[info.Kind]++
	}
	assert.Equal(t, 2, kinds[CallExternal])
	assert.Equal(t, 1, kinds[CallConvert])
	assert.Zero(t, kinds[CallInternal])
}

func TestExternalCallRules(t *testing.T) {
	header := `
interface Token {
    fn transfer(to: address, amount: uint256) -> bool: nonpayable;
    fn balanceOf(owner: address) -> uint256: view;
}
`
	t.Run("view calling mutating interface function", func(t *testing.T) {
		_, err := analyze(t, header+`
@external
@view
fn f(t: Token) -> bool {
    return t.transfer(self, 1);
}
`)
		requireCode(t, err, errors.ErrorStateAccessViolation)
	})

	t.Run("value to non-payable", func(t *testing.T) {
		_, err := analyze(t, header+`
@external
fn f(t: Token) -> bool {
    return t.transfer(self, 1, value=1);
}
`)
		requireCode(t, err, errors.ErrorNonPayable)
	})

	t.Run("interface used as value", func(t *testing.T) {
		_, err := analyze(t, header+`
@external
fn f() {
    x: address = Token;
}
`)
		requireCode(t, err, errors.ErrorTypeMismatch)
	})
}

func TestInternalCallKeywords(t *testing.T) {
	p := mustAnalyze(t, `
@internal
@pure
fn fee(amount: uint256, rate: uint256 = 3) -> uint256 {
    return amount * rate / 100;
}

@external
@pure
fn quote(amount: uint256) -> uint256 {
    return self.fee(amount) + self.fee(amount, rate=5) + self.fee(amount, 7);
}
`)
	quote, _ := p.Root.Function("quote")
	assert.Equal(t, []string{"fee"}, names(p.CallGraph.Called(quote)))

	_, err := analyze(t, `
@internal
@pure
fn fee(amount: uint256, rate: uint256 = 3) -> uint256 {
    return amount * rate;
}

@external
@pure
fn quote(amount: uint256) -> uint256 {
    return self.fee(amount, 5, rate=5);
}
`)
	requireCode(t, err, errors.ErrorArgumentCount)
}
