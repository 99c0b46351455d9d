package asm

import (
	"fmt"

	"sigil/internal/errors"
)

// EVM versions the assembler can target, oldest first.
var evmVersions = []string{"london", "paris", "shanghai", "cancun", "prague"}

const DefaultEVMVersion = "prague"

// EVMVersions lists the accepted target names.
func EVMVersions() []string {
	return append([]string(nil), evmVersions...)
}

func versionIndex(name string) int {
	for i, v := range evmVersions {
		if v == name {
			return i
		}
	}
	return -1
}

// Program is the assembly for one contract.
type Program struct {
	Deploy  []Item
	Runtime []Item
}

// Bytecode is an assembled contract. Deploy already carries the runtime
// code appended after the deploy segment.
type Bytecode struct {
	Deploy  []byte
	Runtime []byte
}

// Assembler turns items into bytecode for one EVM version.
type Assembler struct {
	version string
	push0   bool
}

func NewAssembler(version string) (*Assembler, error) {
	if version == "" {
		version = DefaultEVMVersion
	}
	idx := versionIndex(version)
	if idx < 0 {
		return nil, fmt.Errorf("unknown EVM version %q", version)
	}
	return &Assembler{
		version: version,
		push0:   idx >= versionIndex("shanghai"),
	}, nil
}

func (a *Assembler) Version() string { return a.version }

// AssembleProgram lays out the runtime first so the deploy segment can
// refer to its size and offset.
func (a *Assembler) AssembleProgram(p *Program) (*Bytecode, error) {
	runtime, err := a.Assemble(p.Runtime, nil)
	if err != nil {
		return nil, err
	}

	symbols := map[string]int{SymbolRuntimeSize: len(runtime)}
	size, err := a.size(p.Deploy)
	if err != nil {
		return nil, err
	}
	symbols[SymbolRuntimeOffset] = size

	deploy, err := a.Assemble(p.Deploy, symbols)
	if err != nil {
		return nil, err
	}
	return &Bytecode{
		Deploy:  append(deploy, runtime...),
		Runtime: runtime,
	}, nil
}

// Assemble encodes items. Labels are always two bytes wide, so one pass
// fixes every offset and a second pass emits.
func (a *Assembler) Assemble(items []Item, symbols map[string]int) ([]byte, error) {
	labels, size, err := a.layout(items)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, size)
	for _, it := range items {
		switch it.Kind {
		case KindOp:
			info, ok := Lookup(it.Op)
			if !ok {
				return nil, errors.CompilerPanic("unknown opcode %s", it.Op)
			}
			if info.Code == pushBase && !a.push0 {
				out = append(out, pushBase+1, 0)
				continue
			}
			out = append(out, info.Code)
		case KindPush:
			out = append(out, a.encodePush(it)...)
		case KindPushLabel:
			offset, ok := labels[it.Label]
			if !ok {
				return nil, errors.CompilerPanic("undefined label %q", it.Label)
			}
			out = append(out, push2, byte(offset>>8), byte(offset))
		case KindPushSymbol:
			value, ok := symbols[it.Label]
			if !ok {
				return nil, errors.CompilerPanic("undefined symbol %q", it.Label)
			}
			if value > 0xffff {
				return nil, errors.CompilerPanic("symbol %q does not fit two bytes", it.Label)
			}
			out = append(out, push2, byte(value>>8), byte(value))
		case KindLabel:
			out = append(out, opcodes["JUMPDEST"].Code)
		}
	}
	return out, nil
}

func (a *Assembler) size(items []Item) (int, error) {
	_, size, err := a.layout(items)
	return size, err
}

func (a *Assembler) layout(items []Item) (map[string]int, int, error) {
	labels := make(map[string]int)
	pc := 0
	for _, it := range items {
		if it.Kind == KindLabel {
			if _, dup := labels[it.Label]; dup {
				return nil, 0, errors.CompilerPanic("duplicate label %q", it.Label)
			}
			labels[it.Label] = pc
		}
		pc += a.itemSize(it)
	}
	if pc > 0xffff+1 {
		return nil, 0, errors.CompilerPanic("code size %d exceeds label range", pc)
	}
	return labels, pc, nil
}

func (a *Assembler) itemSize(it Item) int {
	switch it.Kind {
	case KindOp:
		if it.Op == "PUSH0" && !a.push0 {
			return 2
		}
		return 1
	case KindPush:
		n := pushWidth(it.Value)
		if n == 0 && !a.push0 {
			return 2
		}
		return 1 + n
	case KindPushLabel, KindPushSymbol:
		return 3
	case KindLabel:
		return 1
	}
	return 0
}

func (a *Assembler) encodePush(it Item) []byte {
	n := pushWidth(it.Value)
	if n == 0 {
		if a.push0 {
			return []byte{pushBase}
		}
		return []byte{pushBase + 1, 0}
	}
	word := it.Value.Bytes32()
	return append([]byte{pushBase + byte(n)}, word[32-n:]...)
}
