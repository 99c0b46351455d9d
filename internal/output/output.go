// Package output renders a compiled contract in the formats the command
// line tools can print.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"sigil/internal/asm"
	"sigil/internal/codegen"
	"sigil/internal/function"
	"sigil/internal/semantic"
)

type Format string

const (
	ABI               Format = "abi"
	MethodIdentifiers Format = "method_identifiers"
	Asm               Format = "asm"
	AsmRuntime        Format = "asm_runtime"
	Bytecode          Format = "bytecode"
	BytecodeRuntime   Format = "bytecode_runtime"
	CallGraph         Format = "call_graph"
	Layout            Format = "layout"
)

var allFormats = []Format{ABI, MethodIdentifiers, Asm, AsmRuntime, Bytecode, BytecodeRuntime, CallGraph, Layout}

// Formats lists every supported format in display order.
func Formats() []Format {
	return append([]Format(nil), allFormats...)
}

// ParseFormats splits a comma separated list. An empty list is bytecode.
func ParseFormats(list string) ([]Format, error) {
	if strings.TrimSpace(list) == "" {
		return []Format{Bytecode}, nil
	}
	var out []Format
	for _, name := range strings.Split(list, ",") {
		f := Format(strings.TrimSpace(name))
		if !f.valid() {
			return nil, fmt.Errorf("unknown output format %q", name)
		}
		out = append(out, f)
	}
	return out, nil
}

func (f Format) valid() bool {
	for _, known := range allFormats {
		if f == known {
			return true
		}
	}
	return false
}

// Artifacts is everything a compilation produced.
type Artifacts struct {
	Program  *semantic.Program
	Assembly *asm.Program
	Code     *asm.Bytecode
	Layout   *codegen.Layout
}

// Render formats a in f.
func Render(a *Artifacts, f Format) (string, error) {
	switch f {
	case ABI:
		return marshal(ContractABI(a.Program))
	case MethodIdentifiers:
		return marshal(Identifiers(a.Program))
	case Asm:
		return asm.Format(a.Assembly.Deploy), nil
	case AsmRuntime:
		return asm.Format(a.Assembly.Runtime), nil
	case Bytecode:
		return asm.Hex(a.Code.Deploy), nil
	case BytecodeRuntime:
		return asm.Hex(a.Code.Runtime), nil
	case CallGraph:
		return FormatCallGraph(a.Program), nil
	case Layout:
		return marshal(StorageLayout(a.Layout))
	}
	return "", fmt.Errorf("unknown output format %q", f)
}

func marshal(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ContractABI lists the constructor, the external functions (one entry per
// arity), the fallback and the public getters.
func ContractABI(p *semantic.Program) []function.ABIEntry {
	root := p.Root
	entries := []function.ABIEntry{}
	if root.Constructor != nil {
		entries = append(entries, root.Constructor.ABIEntries()...)
	}
	for _, sig := range root.ExternalFunctions() {
		entries = append(entries, sig.ABIEntries()...)
	}
	for _, g := range root.Getters {
		entries = append(entries, g.ABIEntries()...)
	}
	return entries
}

// Identifiers maps each callable signature to its selector.
func Identifiers(p *semantic.Program) map[string]string {
	out := make(map[string]string)
	for _, sig := range p.Root.RuntimeEntryPoints() {
		if sig.IsFallback() {
			continue
		}
		for _, id := range sig.MethodIDs() {
			out[id.Signature] = id.Hex()
		}
	}
	return out
}

// FormatCallGraph prints each function with everything it can reach, one
// function per line.
func FormatCallGraph(p *semantic.Program) string {
	var sb strings.Builder
	for _, m := range p.Modules() {
		for _, sig := range m.Functions {
			reach := p.CallGraph.Reachable(sig)
			names := make([]string, len(reach))
			for i, r := range reach {
				names[i] = r.QualifiedName()
			}
			fmt.Fprintf(&sb, "%s: %s\n", sig.QualifiedName(), strings.Join(names, ", "))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SlotEntry is one row of the storage layout output.
type SlotEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Slot int    `json:"slot"`
	Size int    `json:"size"`
}

func StorageLayout(l *codegen.Layout) []SlotEntry {
	out := make([]SlotEntry, len(l.Slots))
	for i, s := range l.Slots {
		out[i] = SlotEntry{Name: s.Name, Type: s.Type, Slot: s.Slot, Size: s.Size}
	}
	return out
}
