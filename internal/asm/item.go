package asm

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

type Kind int

const (
	KindOp        Kind = iota
	KindPush           // PUSHn of an immediate
	KindPushLabel      // PUSH2 of a label offset
	KindPushSymbol     // PUSH2 of an assembler symbol
	KindLabel          // JUMPDEST that defines a label
	KindBodyStart      // marks the start of a labeled function body, emits nothing
	KindBodyEnd        // marks its end
)

// Symbols the assembler resolves when the deploy segment is laid out.
const (
	SymbolRuntimeSize   = "runtime_size"
	SymbolRuntimeOffset = "runtime_offset"
)

// Item is one assembly instruction or marker.
type Item struct {
	Kind  Kind
	Op    string       // KindOp
	Value *uint256.Int // KindPush
	Label string       // label, symbol or body name
}

func Op(name string) Item {
	return Item{Kind: KindOp, Op: name}
}

func Push(v *uint256.Int) Item {
	return Item{Kind: KindPush, Value: new(uint256.Int).Set(v)}
}

func PushInt(n uint64) Item {
	return Item{Kind: KindPush, Value: uint256.NewInt(n)}
}

func PushLabel(label string) Item {
	return Item{Kind: KindPushLabel, Label: label}
}

func PushSymbol(symbol string) Item {
	return Item{Kind: KindPushSymbol, Label: symbol}
}

func Label(label string) Item {
	return Item{Kind: KindLabel, Label: label}
}

func BodyStart(label string) Item {
	return Item{Kind: KindBodyStart, Label: label}
}

func BodyEnd(label string) Item {
	return Item{Kind: KindBodyEnd, Label: label}
}

// IsTerminator reports whether control cannot fall through the item.
func (it Item) IsTerminator() bool {
	return it.Kind == KindOp && IsTerminator(it.Op)
}

// pushWidth is the number of immediate bytes needed for v; zero means PUSH0.
func pushWidth(v *uint256.Int) int {
	return (v.BitLen() + 7) / 8
}

func (it Item) String() string {
	switch it.Kind {
	case KindOp:
		return it.Op
	case KindPush:
		n := pushWidth(it.Value)
		if n == 0 {
			return "PUSH0"
		}
		return "PUSH" + strconv.Itoa(n) + " " + it.Value.Hex()
	case KindPushLabel:
		return "PUSH2 _sym_" + it.Label
	case KindPushSymbol:
		return "PUSH2 $" + it.Label
	case KindLabel:
		return "_sym_" + it.Label + " JUMPDEST"
	case KindBodyStart:
		return "; begin " + it.Label
	case KindBodyEnd:
		return "; end " + it.Label
	}
	return fmt.Sprintf("<item %d>", it.Kind)
}

func dupName(n int) string  { return "DUP" + strconv.Itoa(n) }
func swapName(n int) string { return "SWAP" + strconv.Itoa(n) }

func Dup(n int) Item  { return Op(dupName(n)) }
func Swap(n int) Item { return Op(swapName(n)) }
