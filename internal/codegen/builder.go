package codegen

import (
	"fmt"

	"github.com/tliron/commonlog"

	"sigil/internal/asm"
	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/folding"
	"sigil/internal/function"
	"sigil/internal/semantic"
	"sigil/internal/types"
)

var log = commonlog.GetLogger("sigil.codegen")

// Labels shared by every body in a segment.
const (
	labelRevert     = "revert"
	labelBubble     = "bubble_revert"
	labelFallback   = "fallback"
	labelDeployTail = "deploy_tail"
)

// Result is the generated assembly with the layout it was built against.
type Result struct {
	Program *asm.Program
	Layout  *Layout
}

// exitKind selects how a return statement leaves the current body.
type exitKind int

const (
	exitInternal exitKind = iota
	exitExternal
	exitConstructor
)

type variable struct {
	offset int
	typ    types.Type
}

type loopLabels struct {
	cont, end string
}

// funcState is the builder state for the body being generated.
type funcState struct {
	sig    *function.Signature
	module *semantic.ModuleInfo
	exit   exitKind
	scopes []map[string]variable
	loops  []loopLabels
}

func (f *funcState) lookup(name string) (variable, bool) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if v, ok := f.scopes[i][name]; ok {
			return v, true
		}
	}
	return variable{}, false
}

func (f *funcState) define(name string, v variable) {
	f.scopes[len(f.scopes)-1][name] = v
}

func (f *funcState) push() { f.scopes = append(f.scopes, make(map[string]variable)) }
func (f *funcState) pop()  { f.scopes = f.scopes[:len(f.scopes)-1] }

// Builder lowers an analyzed program to assembly.
type Builder struct {
	program *semantic.Program
	layout  *Layout
	mem     allocator

	params   map[*function.Signature][]int
	callBufs map[*ast.CallExpr]int
	labelSeq int
	items    []asm.Item
	fn       *funcState
}

func NewBuilder(program *semantic.Program) *Builder {
	return &Builder{
		program:  program,
		layout:   newLayout(),
		params:   make(map[*function.Signature][]int),
		callBufs: make(map[*ast.CallExpr]int),
	}
}

// Generate lowers p. Internal functions get ids, locks and frames first;
// every internal body is then emitted into both segments.
func Generate(p *semantic.Program) (*Result, error) {
	return NewBuilder(p).Build()
}

func (b *Builder) Build() (*Result, error) {
	if err := b.assignFunctionIDs(); err != nil {
		return nil, err
	}
	if err := b.collectStorageLayout(); err != nil {
		return nil, err
	}
	if err := b.allocateFrames(); err != nil {
		return nil, err
	}

	var bodies []asm.Item
	for _, sig := range b.program.InternalFunctions() {
		items, err := b.buildInternal(sig)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, items...)
	}

	runtime, err := b.buildRuntime()
	if err != nil {
		return nil, err
	}
	deploy, err := b.buildDeploy()
	if err != nil {
		return nil, err
	}

	log.Debugf("generated %d deploy and %d runtime items, %d storage slots",
		len(deploy)+len(bodies), len(runtime)+len(bodies), b.layout.Size())
	return &Result{
		Program: &asm.Program{
			Deploy:  append(deploy, bodies...),
			Runtime: append(runtime, bodies...),
		},
		Layout: b.layout,
	}, nil
}

func (b *Builder) assignFunctionIDs() error {
	for i, sig := range b.program.Functions() {
		if err := sig.SetFunctionID(i); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) collectStorageLayout() error {
	for _, sig := range b.program.Functions() {
		if sig.Nonreentrant == "" {
			continue
		}
		if err := sig.SetReentrancySlot(b.layout.lockSlot(sig.Nonreentrant)); err != nil {
			return err
		}
	}
	for _, v := range b.program.Root.StateVars {
		b.layout.addVar(v)
	}
	return nil
}

// allocateFrames gives every parameter a memory word up front so call
// sites can store arguments before the callee body is built.
func (b *Builder) allocateFrames() error {
	for _, sig := range b.program.Functions() {
		offsets := make([]int, sig.NTotal())
		for i, t := range sig.ArgumentTypes() {
			if !isWord(t) {
				return unsupported(fmt.Sprintf("parameter of type %s", t), paramNode(sig, i))
			}
			offsets[i] = b.mem.words(1)
		}
		if sig.Return != nil && !isWord(sig.Return) {
			return unsupported(fmt.Sprintf("return type %s", sig.Return), sig.Decl)
		}
		b.params[sig] = offsets
	}
	return nil
}

func paramNode(sig *function.Signature, i int) ast.Node {
	if i < sig.NPositional() {
		if n := sig.Positional[i].Node; n != nil {
			return n
		}
	} else if n := sig.Keyword[i-sig.NPositional()].Node; n != nil {
		return n
	}
	return sig.Decl
}

// emission

func (b *Builder) emit(items ...asm.Item) {
	b.items = append(b.items, items...)
}

func (b *Builder) op(names ...string) {
	for _, name := range names {
		b.items = append(b.items, asm.Op(name))
	}
}

func (b *Builder) pushInt(n int) {
	b.emit(asm.PushInt(uint64(n)))
}

func (b *Builder) newLabel(kind string) string {
	b.labelSeq++
	return fmt.Sprintf("%s_%d", kind, b.labelSeq)
}

func (b *Builder) jump(label string) {
	b.emit(asm.PushLabel(label), asm.Op("JUMP"))
}

func (b *Builder) jumpIf(label string) {
	b.emit(asm.PushLabel(label), asm.Op("JUMPI"))
}

// revertIf reverts when the top of the stack is non-zero.
func (b *Builder) revertIf() {
	b.jumpIf(labelRevert)
}

// capture runs fn with a fresh item buffer and returns what it emitted.
func (b *Builder) capture(fn func() error) ([]asm.Item, error) {
	saved := b.items
	b.items = nil
	err := fn()
	out := b.items
	b.items = saved
	return out, err
}

// enter starts a body for sig and binds its parameters.
func (b *Builder) enter(sig *function.Signature, module *semantic.ModuleInfo, exit exitKind) {
	b.fn = &funcState{sig: sig, module: module, exit: exit}
	b.fn.push()
	argTypes := sig.ArgumentTypes()
	for i, name := range sig.ArgumentNames() {
		b.fn.define(name, variable{offset: b.params[sig][i], typ: argTypes[i]})
	}
}

func (b *Builder) buildInternal(sig *function.Signature) ([]asm.Item, error) {
	return b.capture(func() error {
		b.enter(sig, b.program.Owner(sig), exitInternal)
		defer func() { b.fn = nil }()

		b.emit(asm.BodyStart(sig.Label()), asm.Label(sig.Label()))
		b.acquireLock(sig)
		if err := b.buildFunctionBody(sig); err != nil {
			return err
		}
		b.emit(asm.BodyEnd(sig.Label()))
		return nil
	})
}

// buildFunctionBody emits the statements and the implicit return at the end.
func (b *Builder) buildFunctionBody(sig *function.Signature) error {
	def, ok := sig.Decl.(*ast.FunctionDef)
	if !ok || def.Body == nil {
		return errors.CompilerPanic("no body for %s", sig.QualifiedName())
	}
	if err := b.buildBlock(def.Body); err != nil {
		return err
	}
	if sig.Return == nil {
		b.buildExit(false)
	} else {
		b.op("INVALID")
	}
	return nil
}

func (b *Builder) acquireLock(sig *function.Signature) {
	slot, ok := sig.ReentrancySlot()
	if !ok {
		return
	}
	b.pushInt(slot)
	b.op("SLOAD")
	b.revertIf()
	b.pushInt(1)
	b.pushInt(slot)
	b.op("SSTORE")
}

func (b *Builder) releaseLock(sig *function.Signature) {
	slot, ok := sig.ReentrancySlot()
	if !ok {
		return
	}
	b.pushInt(0)
	b.pushInt(slot)
	b.op("SSTORE")
}

// buildExit leaves the current body. When value is set the return value
// is on top of the stack.
func (b *Builder) buildExit(value bool) {
	b.releaseLock(b.fn.sig)
	switch b.fn.exit {
	case exitInternal:
		if value {
			b.op("SWAP1")
		}
		b.op("JUMP")
	case exitExternal:
		if value {
			b.pushInt(0)
			b.op("MSTORE")
			b.pushInt(wordSize)
			b.pushInt(0)
			b.op("RETURN")
			return
		}
		b.op("STOP")
	case exitConstructor:
		b.jump(labelDeployTail)
	}
}

// folding

func (b *Builder) constants(m *semantic.ModuleInfo) folding.Lookup {
	return func(name string) (folding.Value, bool) {
		if k, ok := m.Constant(name); ok {
			return k.Value, true
		}
		return folding.Value{}, false
	}
}

// fold evaluates expr when it is a compile-time constant in the current
// module. Analysis already rejected invalid constants.
func (b *Builder) fold(expr ast.Expr) (folding.Value, bool) {
	v, err := folding.NewFolder(b.constants(b.fn.module)).Fold(expr)
	return v, err == nil
}

// typeOf returns the analyzed type of expr.
func (b *Builder) typeOf(expr ast.Expr) types.Type {
	if n, ok := ast.Unparen(expr).(*ast.NameExpr); ok && n.Name == "self" {
		return types.Address
	}
	if t, ok := b.program.Types[expr]; ok {
		return t
	}
	return b.program.Types[ast.Unparen(expr)]
}

func unsupported(what string, node ast.Node) error {
	return errors.At(errors.ErrorUnsupported, what+" is not supported by code generation", node).Build()
}
