package codegen

import (
	"fmt"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/asm"
	"sigil/internal/errors"
	"sigil/internal/function"
	"sigil/internal/parser"
	"sigil/internal/semantic"
)

func analyze(t *testing.T, source string) *semantic.Program {
	t.Helper()
	module, parseErrs, scanErrs := parser.ParseSource("test.sg", source)
	require.Empty(t, scanErrs)
	require.Empty(t, parseErrs)
	p, err := semantic.NewAnalyzer(nil).Analyze(module)
	require.NoError(t, err)
	return p
}

func generate(t *testing.T, source string) (*semantic.Program, *Result) {
	t.Helper()
	p := analyze(t, source)
	res, err := Generate(p)
	require.NoError(t, err)
	return p, res
}

func labels(items []asm.Item) map[string]bool {
	out := make(map[string]bool)
	for _, it := range items {
		if it.Kind == asm.KindLabel {
			out[it.Label] = true
		}
	}
	return out
}

func pushes(items []asm.Item, v uint64) bool {
	want := uint256.NewInt(v)
	for _, it := range items {
		if it.Kind == asm.KindPush && it.Value.Eq(want) {
			return true
		}
	}
	return false
}

const token = `
interface Receiver {
    fn onReceive(sender: address, amount: uint256) -> bool: nonpayable;
    fn ready() -> bool: view;
}

MAX_HOLDERS: constant(uint256) = 4;

owner: public(address);
balances: public(HashMap[address, uint256]);
holders: DynArray[address, 4];
limits: uint256[3];
supply: uint256;

@external
fn __init__(initial: uint256) {
    self.owner = msg.sender;
    self.mint(msg.sender, initial);
}

@internal
fn mint(to: address, amount: uint256) {
    self.balances[to] += amount;
    self.supply += amount;
    if len(self.holders) < MAX_HOLDERS {
        self.holders.append(to);
    }
}

@internal
@view
fn fee(amount: uint256, rate: uint256 = 3) -> uint256 {
    return amount * rate / 100;
}

@external
@nonreentrant("lock")
fn transfer(to: address, amount: uint256 = 1) -> bool {
    assert self.balances[msg.sender] >= amount, "balance";
    self.balances[msg.sender] -= amount;
    self.balances[to] += amount - self.fee(amount);
    return true;
}

@external
@nonreentrant("lock")
fn notify(r: Receiver, amount: uint256) -> bool {
    if not r.ready(skip_contract_check=true) {
        return false;
    }
    return r.onReceive(msg.sender, amount, gas=100000, default_return_value=true);
}

@external
@view
fn total() -> uint256 {
    acc: uint256 = 0;
    for h in self.holders {
        acc += self.balances[h];
    }
    for i in range(3) {
        acc += self.limits[i];
    }
    for x: int128 in [1, -2, 3] {
        if x < 0 {
            continue;
        }
        acc += 1;
    }
    return max(acc, self.supply);
}

@external
@payable
fn __default__() {
    pass;
}
`

func TestStorageLayout(t *testing.T) {
	p, res := generate(t, token)

	want := []StorageSlot{
		{Name: "nonreentrant.lock", Type: "uint256", Slot: 0, Size: 1, Lock: true},
		{Name: "owner", Type: "address", Slot: 1, Size: 1},
		{Name: "balances", Type: "HashMap[address, uint256]", Slot: 2, Size: 1},
		{Name: "holders", Type: "DynArray[address, 4]", Slot: 3, Size: 5},
		{Name: "limits", Type: "uint256[3]", Slot: 8, Size: 3},
		{Name: "supply", Type: "uint256", Slot: 11, Size: 1},
	}
	assert.Equal(t, want, res.Layout.Slots)
	assert.Equal(t, 12, res.Layout.Size())

	for _, name := range []string{"transfer", "notify"} {
		sig, ok := p.Root.Function(name)
		require.True(t, ok)
		slot, ok := sig.ReentrancySlot()
		require.True(t, ok)
		assert.Equal(t, 0, slot, name)
	}
}

func TestDistinctLockKeys(t *testing.T) {
	_, res := generate(t, `
@external
@nonreentrant("a")
fn f() {
    pass;
}

@external
@nonreentrant("b")
fn g() {
    pass;
}

@external
@nonreentrant("a")
fn h() {
    pass;
}
`)
	require.Len(t, res.Layout.Slots, 2)
	assert.Equal(t, "nonreentrant.a", res.Layout.Slots[0].Name)
	assert.Equal(t, "nonreentrant.b", res.Layout.Slots[1].Name)
}

func TestInternalBodiesInBothSegments(t *testing.T) {
	p, res := generate(t, token)

	for _, sig := range p.InternalFunctions() {
		id, ok := sig.FunctionID()
		require.True(t, ok)
		assert.Contains(t, sig.Label(), sig.CanonicalSignature())
		assert.Equal(t, sig, p.Functions()[id])

		for _, segment := range [][]asm.Item{res.Program.Deploy, res.Program.Runtime} {
			assert.True(t, labels(segment)[sig.Label()], sig.Label())
			assert.Contains(t, segment, asm.BodyStart(sig.Label()))
			assert.Contains(t, segment, asm.BodyEnd(sig.Label()))
		}
	}
}

func TestDispatcherSelectors(t *testing.T) {
	_, res := generate(t, token)

	for _, sig := range []string{
		"transfer(address)",
		"transfer(address,uint256)",
		"notify(address,uint256)",
		"total()",
		"owner()",
		"balances(address)",
	} {
		assert.True(t, pushes(res.Program.Runtime, uint64(function.Selector(sig))), sig)
		assert.False(t, pushes(res.Program.Deploy, uint64(function.Selector(sig))), sig)
	}

	// one stub per arity, a shared body
	runtime := labels(res.Program.Runtime)
	assert.True(t, runtime["abi transfer(address)"])
	assert.True(t, runtime["abi transfer(address,uint256)"])
	assert.True(t, runtime["external transfer(address,uint256)"])
	assert.True(t, runtime["getter balances(address)"])
	assert.True(t, runtime[labelFallback])
}

func TestCallSelectors(t *testing.T) {
	_, res := generate(t, token)
	for _, sig := range []string{"onReceive(address,uint256)", "ready()"} {
		word := new(uint256.Int).Lsh(uint256.NewInt(uint64(function.Selector(sig))), selectorShift)
		assert.Contains(t, res.Program.Runtime, asm.Push(word), sig)
	}
	assert.Contains(t, res.Program.Runtime, asm.Op("STATICCALL"))
	assert.Contains(t, res.Program.Runtime, asm.Op("CALL"))
}

const splitter = `
interface Splitter {
    fn split(a: uint256, b: uint256 = 1111, c: uint256 = 2222): nonpayable;
}

@external
fn run(s: Splitter) {
    %s;
}
`

func TestExternalCallKeywordArity(t *testing.T) {
	selectorWord := func(sig string) asm.Item {
		return asm.Push(new(uint256.Int).Lsh(uint256.NewInt(uint64(function.Selector(sig))), selectorShift))
	}
	tests := []struct {
		call    string
		sig     string
		skipped []string
		words   []uint64
		absent  []uint64
	}{
		{"s.split(777)", "split(uint256)", []string{"split(uint256,uint256)"}, []uint64{777}, []uint64{1111, 2222}},
		{"s.split(777, b=3333)", "split(uint256,uint256)", []string{"split(uint256)"}, []uint64{777, 3333}, []uint64{1111, 2222}},
		{"s.split(777, c=5555)", "split(uint256,uint256,uint256)", []string{"split(uint256)", "split(uint256,uint256)"}, []uint64{777, 1111, 5555}, []uint64{2222}},
		{"s.split(777, c=5555, b=3333)", "split(uint256,uint256,uint256)", nil, []uint64{777, 3333, 5555}, []uint64{1111, 2222}},
	}
	for _, tt := range tests {
		t.Run(tt.call, func(t *testing.T) {
			_, res := generate(t, fmt.Sprintf(splitter, tt.call))
			runtime := res.Program.Runtime

			assert.Contains(t, runtime, selectorWord(tt.sig))
			for _, sig := range tt.skipped {
				assert.NotContains(t, runtime, selectorWord(sig))
			}
			for _, w := range tt.words {
				assert.True(t, pushes(runtime, w), "argument word %d", w)
			}
			for _, w := range tt.absent {
				assert.False(t, pushes(runtime, w), "unused default %d", w)
			}
		})
	}
}

func TestDeploySegment(t *testing.T) {
	_, res := generate(t, token)

	deploy := res.Program.Deploy
	assert.Contains(t, deploy, asm.PushSymbol(asm.SymbolRuntimeSize))
	assert.Contains(t, deploy, asm.PushSymbol(asm.SymbolRuntimeOffset))
	assert.True(t, labels(deploy)[labelDeployTail])
	assert.False(t, labels(res.Program.Runtime)[labelDeployTail])
	assert.Contains(t, deploy, asm.Op("CODECOPY"))
}

func TestAssembles(t *testing.T) {
	_, res := generate(t, token)

	for _, version := range []string{"paris", "shanghai", "prague"} {
		t.Run(version, func(t *testing.T) {
			a, err := asm.NewAssembler(version)
			require.NoError(t, err)
			code, err := a.AssembleProgram(res.Program)
			require.NoError(t, err)
			require.NotEmpty(t, code.Runtime)
			assert.Equal(t, code.Runtime, code.Deploy[len(code.Deploy)-len(code.Runtime):])
		})
	}
}

func TestFallbackWithoutDefault(t *testing.T) {
	_, res := generate(t, `
@external
fn f() {
    pass;
}
`)
	runtime := res.Program.Runtime
	idx := -1
	for i, it := range runtime {
		if it.Kind == asm.KindLabel && it.Label == labelFallback {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, []asm.Item{asm.PushInt(0), asm.Op("DUP1"), asm.Op("REVERT")}, runtime[idx+1:idx+4])
}

func TestCheckedArithmetic(t *testing.T) {
	cases := []struct {
		name string
		expr string
		typ  string
		want []string
	}{
		{"unsigned add", "a + b", "uint256", []string{"DUP2", "ADD", "SWAP1", "DUP2", "LT"}},
		{"unsigned sub", "a - b", "uint256", []string{"DUP1", "DUP3", "LT"}},
		{"narrow add", "a + b", "uint8", []string{"ADD", "DUP1"}},
		{"signed add", "a + b", "int256", []string{"DUP2", "DUP2", "ADD", "DUP3", "DUP2", "SLT"}},
		{"signed less", "a < b", "int128", []string{"SWAP1", "SLT"}},
		{"unsigned at least", "a >= b", "uint256", []string{"SWAP1", "LT", "ISZERO"}},
		{"division", "a / b", "uint256", []string{"DUP1", "ISZERO"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ret := tc.typ
			if len(tc.expr) > 2 && (tc.expr[2] == '<' || tc.expr[2] == '>') {
				ret = "bool"
			}
			_, res := generate(t, "@external\n@pure\nfn f(a: "+tc.typ+", b: "+tc.typ+") -> "+ret+" {\n    return "+tc.expr+";\n}\n")
			ops := make([]string, 0, len(res.Program.Runtime))
			for _, it := range res.Program.Runtime {
				if it.Kind == asm.KindOp {
					ops = append(ops, it.Op)
				}
			}
			assert.True(t, containsRun(ops, tc.want), "%v not in %v", tc.want, ops)
		})
	}
}

func containsRun(ops, run []string) bool {
	for i := 0; i+len(run) <= len(ops); i++ {
		match := true
		for j := range run {
			if ops[i+j] != run[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestUnsupported(t *testing.T) {
	cases := map[string]string{
		"string local": `
@external
fn f() {
    s: String[8] = "hi";
}
`,
		"array parameter": `
@external
fn f(xs: DynArray[uint256, 3]) {
    pass;
}
`,
		"variable exponent": `
@external
@pure
fn f(a: uint256, b: uint256) -> uint256 {
    return a ** b;
}
`,
		"signed exponent": `
@external
@pure
fn f(a: int128) -> int128 {
    return a ** 2;
}
`,
		"string getter": `
name: public(String[16]);
`,
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			p := analyze(t, source)
			_, err := Generate(p)
			require.Error(t, err)
			ce, ok := errors.AsCompilerError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorUnsupported, ce.Code, ce.Message)
		})
	}
}

func TestConstantExponent(t *testing.T) {
	_, res := generate(t, `
@external
@pure
fn f(a: uint256) -> uint256 {
    return a ** 2 + 2 ** a;
}
`)
	ops := res.Program.Runtime
	assert.Contains(t, ops, asm.Op("EXP"))
	// 2 ** 255 is the largest power of two in range
	assert.True(t, pushes(ops, 255))
	// sqrt(2**256 - 1) rounded down
	bound := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
	assert.Contains(t, ops, asm.Push(bound))
}

func TestFrameOffsetsDoNotOverlap(t *testing.T) {
	p, _ := generate(t, token)
	b := NewBuilder(p)
	seen := make(map[int]bool)
	require.NoError(t, b.allocateFrames())
	for _, offsets := range b.params {
		for _, off := range offsets {
			assert.False(t, seen[off], "offset 0x%x reused", off)
			assert.GreaterOrEqual(t, off, memoryStart)
			seen[off] = true
		}
	}
}

func TestFunctionIDsAssignedOnce(t *testing.T) {
	p, _ := generate(t, token)
	_, err := Generate(p)
	require.Error(t, err)
	assert.True(t, errors.IsPanic(err))
}
