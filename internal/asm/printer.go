package asm

import (
	"encoding/hex"
	"strings"
)

// Format renders items one per line. Instructions are indented under the
// label or body marker they follow.
func Format(items []Item) string {
	var sb strings.Builder
	for _, it := range items {
		switch it.Kind {
		case KindLabel, KindBodyStart, KindBodyEnd:
		default:
			sb.WriteString("    ")
		}
		sb.WriteString(it.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatInline renders items on one line, markers omitted.
func FormatInline(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Kind == KindBodyStart || it.Kind == KindBodyEnd {
			continue
		}
		parts = append(parts, it.String())
	}
	return strings.Join(parts, " ")
}

// Hex renders bytecode with a 0x prefix.
func Hex(code []byte) string {
	return "0x" + hex.EncodeToString(code)
}
