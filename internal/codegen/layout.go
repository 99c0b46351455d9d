package codegen

import (
	"sigil/internal/semantic"
	"sigil/internal/types"
)

// StorageSlot is one entry in the contract's storage layout.
type StorageSlot struct {
	Name string
	Type string
	Slot int
	Size int
	Lock bool
}

// Layout assigns storage slots. Re-entrancy locks come first, one per
// distinct key, then state variables in declaration order.
type Layout struct {
	Slots []StorageSlot

	locks map[string]int
	vars  map[*semantic.StateVar]int
	next  int
}

func newLayout() *Layout {
	return &Layout{
		locks: make(map[string]int),
		vars:  make(map[*semantic.StateVar]int),
	}
}

func (l *Layout) allocate(name, typ string, size int, lock bool) int {
	slot := l.next
	l.Slots = append(l.Slots, StorageSlot{Name: name, Type: typ, Slot: slot, Size: size, Lock: lock})
	l.next += size
	return slot
}

// lockSlot returns the slot for key, allocating it on first use.
func (l *Layout) lockSlot(key string) int {
	if slot, ok := l.locks[key]; ok {
		return slot
	}
	slot := l.allocate("nonreentrant."+key, "uint256", 1, true)
	l.locks[key] = slot
	return slot
}

func (l *Layout) addVar(v *semantic.StateVar) {
	l.vars[v] = l.allocate(v.Name, v.Type.String(), v.Type.StorageSlots(), false)
}

// VarSlot returns the first slot of v.
func (l *Layout) VarSlot(v *semantic.StateVar) (int, bool) {
	slot, ok := l.vars[v]
	return slot, ok
}

// Size is the number of slots in use.
func (l *Layout) Size() int { return l.next }

// memory layout

const (
	scratchSlot   = 0x00 // two words of hashing scratch space
	memoryStart   = 0x80
	wordSize      = 32
	selectorShift = 224
)

// allocator hands out static memory. Frames never overlap, which is safe
// because the call graph is acyclic.
type allocator struct {
	next int
}

func (a *allocator) words(n int) int {
	if a.next == 0 {
		a.next = memoryStart
	}
	offset := a.next
	a.next += n * wordSize
	return offset
}

// isWord reports whether values of t fit one stack word.
func isWord(t types.Type) bool {
	if types.IsValueType(t) {
		return true
	}
	return t != nil && t.SupportsExternalCalls()
}
