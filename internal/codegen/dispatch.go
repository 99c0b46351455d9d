package codegen

import (
	"fmt"

	"sigil/internal/asm"
	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/function"
	"sigil/internal/types"
)

// entry is one selector the dispatcher matches.
type entry struct {
	id     function.MethodID
	sig    *function.Signature
	stub   string
	getter bool // reads a public state variable
}

func externalLabel(sig *function.Signature) string {
	return "external " + sig.CanonicalSignature()
}

func (b *Builder) runtimeEntries() []entry {
	root := b.program.Root
	var entries []entry
	for _, sig := range root.ExternalFunctions() {
		if sig.IsFallback() {
			continue
		}
		for _, id := range sig.MethodIDs() {
			entries = append(entries, entry{id: id, sig: sig, stub: "abi " + id.Signature})
		}
	}
	for _, g := range root.Getters {
		for _, id := range g.MethodIDs() {
			entries = append(entries, entry{id: id, sig: g, stub: "getter " + id.Signature, getter: true})
		}
	}
	return entries
}

// buildRuntime emits the selector dispatcher, one stub per arity, the
// shared external bodies and the fallback.
func (b *Builder) buildRuntime() ([]asm.Item, error) {
	entries := b.runtimeEntries()
	return b.capture(func() error {
		b.pushInt(4)
		b.op("CALLDATASIZE", "LT")
		b.jumpIf(labelFallback)
		b.pushInt(0)
		b.op("CALLDATALOAD")
		b.pushInt(selectorShift)
		b.op("SHR")
		for _, e := range entries {
			b.op("DUP1")
			b.emit(asm.PushInt(uint64(e.id.Selector)))
			b.op("EQ")
			b.jumpIf(e.stub)
		}
		b.op("POP")

		b.emit(asm.Label(labelFallback))
		if err := b.buildFallback(); err != nil {
			return err
		}

		for _, e := range entries {
			var err error
			if e.getter {
				err = b.buildGetter(e)
			} else {
				err = b.buildStub(e)
			}
			if err != nil {
				return err
			}
		}

		for _, sig := range b.program.Root.ExternalFunctions() {
			if sig.IsFallback() {
				continue
			}
			if err := b.buildExternal(sig); err != nil {
				return err
			}
		}

		b.buildRevertTargets()
		return nil
	})
}

func (b *Builder) buildRevertTargets() {
	b.emit(asm.Label(labelRevert))
	b.pushInt(0)
	b.op("DUP1", "REVERT")
	b.emit(asm.Label(labelBubble))
	b.op("RETURNDATASIZE")
	b.pushInt(0)
	b.pushInt(0)
	b.op("RETURNDATACOPY", "RETURNDATASIZE")
	b.pushInt(0)
	b.op("REVERT")
}

func (b *Builder) nonpayableCheck(sig *function.Signature) {
	if sig.IsPayable() {
		return
	}
	b.op("CALLVALUE")
	b.revertIf()
}

// calldataSizeCheck reverts when fewer than n argument words were sent.
func (b *Builder) calldataSizeCheck(n int) {
	if n == 0 {
		return
	}
	b.pushInt(4 + n*wordSize)
	b.op("CALLDATASIZE", "LT")
	b.revertIf()
}

// loadCalldata pushes argument i, clamped to t.
func (b *Builder) loadCalldata(i int, t types.Type) {
	b.pushInt(4 + i*wordSize)
	b.op("CALLDATALOAD")
	b.clamp(t)
}

// buildStub copies one arity's arguments into the frame, fills the
// omitted keyword parameters with their defaults and enters the body.
func (b *Builder) buildStub(e entry) error {
	sig := e.sig
	b.enter(sig, b.program.Root, exitExternal)
	defer func() { b.fn = nil }()

	b.emit(asm.Label(e.stub))
	b.op("POP")
	b.nonpayableCheck(sig)
	b.calldataSizeCheck(e.id.Arity)

	argTypes := sig.ArgumentTypes()
	offsets := b.params[sig]
	for i := 0; i < e.id.Arity; i++ {
		b.loadCalldata(i, argTypes[i])
		b.pushInt(offsets[i])
		b.op("MSTORE")
	}
	for i := e.id.Arity; i < sig.NTotal(); i++ {
		if err := b.buildDefault(sig, sig.Keyword[i-sig.NPositional()].Default); err != nil {
			return err
		}
		b.pushInt(offsets[i])
		b.op("MSTORE")
	}
	b.jump(externalLabel(sig))
	return nil
}

func (b *Builder) buildExternal(sig *function.Signature) error {
	b.enter(sig, b.program.Root, exitExternal)
	defer func() { b.fn = nil }()

	b.emit(asm.Label(externalLabel(sig)))
	b.acquireLock(sig)
	return b.buildFunctionBody(sig)
}

func (b *Builder) buildFallback() error {
	sig := b.program.Root.Fallback
	if sig == nil {
		b.pushInt(0)
		b.op("DUP1", "REVERT")
		return nil
	}
	b.enter(sig, b.program.Root, exitExternal)
	defer func() { b.fn = nil }()

	b.nonpayableCheck(sig)
	b.acquireLock(sig)
	return b.buildFunctionBody(sig)
}

// buildGetter reads a public state variable. Each argument indexes one
// level of the variable's type.
func (b *Builder) buildGetter(e entry) error {
	sig := e.sig
	decl, _ := sig.Decl.(*ast.VariableDecl)
	if decl == nil {
		return errors.CompilerPanic("getter %s without a declaration", sig.Name)
	}
	v, ok := b.program.Root.StateVar(sig.Name)
	if !ok {
		return errors.CompilerPanic("getter %s without a state variable", sig.Name)
	}
	slot, _ := b.layout.VarSlot(v)

	b.emit(asm.Label(e.stub))
	b.op("POP")
	b.nonpayableCheck(sig)
	b.calldataSizeCheck(e.id.Arity)

	b.pushInt(slot)
	t := v.Type
	argTypes := sig.ArgumentTypes()
	for i := 0; i < e.id.Arity; i++ {
		b.loadCalldata(i, argTypes[i])
		next, err := b.indexSlot(t, decl)
		if err != nil {
			return err
		}
		t = next
	}
	if !isWord(t) {
		return unsupported(fmt.Sprintf("public getter for %s", t), decl)
	}
	b.op("SLOAD")
	b.pushInt(0)
	b.op("MSTORE")
	b.pushInt(wordSize)
	b.pushInt(0)
	b.op("RETURN")
	return nil
}

// buildDeploy emits the constructor followed by the code that returns
// the runtime segment.
func (b *Builder) buildDeploy() ([]asm.Item, error) {
	return b.capture(func() error {
		if ctor := b.program.Root.Constructor; ctor != nil {
			if err := b.buildConstructor(ctor); err != nil {
				return err
			}
		} else {
			b.op("CALLVALUE")
			b.revertIf()
		}

		b.emit(asm.Label(labelDeployTail))
		b.emit(asm.PushSymbol(asm.SymbolRuntimeSize))
		b.op("DUP1")
		b.emit(asm.PushSymbol(asm.SymbolRuntimeOffset))
		b.pushInt(0)
		b.op("CODECOPY")
		b.pushInt(0)
		b.op("RETURN")

		b.buildRevertTargets()
		return nil
	})
}

// buildConstructor reads the arguments appended to the init code, one
// word each, from the end of the code.
func (b *Builder) buildConstructor(sig *function.Signature) error {
	b.enter(sig, b.program.Root, exitConstructor)
	defer func() { b.fn = nil }()

	b.nonpayableCheck(sig)
	n := sig.NTotal()
	argTypes := sig.ArgumentTypes()
	for i, offset := range b.params[sig] {
		b.pushInt(wordSize)
		b.pushInt((n - i) * wordSize)
		b.op("CODESIZE", "SUB")
		b.pushInt(offset)
		b.op("CODECOPY")
		b.pushInt(offset)
		b.op("MLOAD")
		b.clamp(argTypes[i])
		b.op("POP")
	}
	b.acquireLock(sig)
	return b.buildFunctionBody(sig)
}
