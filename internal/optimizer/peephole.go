package optimizer

import "sigil/internal/asm"

// UnreachableCode removes the items between a terminator and the next
// label or body marker.
type UnreachableCode struct{}

func (uc *UnreachableCode) Name() string {
	return "Unreachable Code"
}

func (uc *UnreachableCode) Description() string {
	return "Removes instructions that follow an unconditional jump, return, revert or stop"
}

func (uc *UnreachableCode) Apply(_ Segment, items []asm.Item) ([]asm.Item, bool, error) {
	out := make([]asm.Item, 0, len(items))
	dead := false
	changed := false
	for _, it := range items {
		switch it.Kind {
		case asm.KindLabel, asm.KindBodyStart, asm.KindBodyEnd:
			dead = false
		default:
			if dead {
				changed = true
				continue
			}
		}
		out = append(out, it)
		if it.IsTerminator() {
			dead = true
		}
	}
	return out, changed, nil
}

// JumpToNext removes a jump to the label that immediately follows it.
type JumpToNext struct{}

func (jn *JumpToNext) Name() string {
	return "Jump To Next"
}

func (jn *JumpToNext) Description() string {
	return "Removes unconditional jumps whose target is the next instruction"
}

func (jn *JumpToNext) Apply(_ Segment, items []asm.Item) ([]asm.Item, bool, error) {
	out := make([]asm.Item, 0, len(items))
	changed := false
	for i := 0; i < len(items); i++ {
		if i+2 < len(items) &&
			items[i].Kind == asm.KindPushLabel &&
			items[i+1].Kind == asm.KindOp && items[i+1].Op == "JUMP" &&
			items[i+2].Kind == asm.KindLabel && items[i+2].Label == items[i].Label {
			i++
			changed = true
			continue
		}
		out = append(out, items[i])
	}
	return out, changed, nil
}
