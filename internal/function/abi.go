package function

import (
	"encoding/json"
)

// ABIArg is one input or output of an ABI entry.
type ABIArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ABIEntry is one element of the contract's JSON ABI.
type ABIEntry struct {
	Type            string
	Name            string
	Inputs          []ABIArg
	Outputs         []ABIArg
	StateMutability string
}

// MarshalJSON omits everything but the type and mutability for fallback
// entries and always emits input and output lists otherwise.
func (e ABIEntry) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"type":            e.Type,
		"stateMutability": e.StateMutability,
	}
	if e.Type == "fallback" {
		return json.Marshal(out)
	}
	if e.Name != "" {
		out["name"] = e.Name
	}
	out["inputs"] = nonNil(e.Inputs)
	out["outputs"] = nonNil(e.Outputs)
	return json.Marshal(out)
}

func nonNil(args []ABIArg) []ABIArg {
	if args == nil {
		return []ABIArg{}
	}
	return args
}

// ABIEntries returns the entries for s: one per valid arity for functions
// with defaults, a single entry otherwise.
func (s *Signature) ABIEntries() []ABIEntry {
	base := ABIEntry{StateMutability: s.Mutability.String()}

	switch {
	case s.IsFallback():
		base.Type = "fallback"
		return []ABIEntry{base}
	case s.IsConstructor():
		base.Type = "constructor"
	default:
		base.Type = "function"
		base.Name = s.Name
	}

	names, argTypes := s.ArgumentNames(), s.ArgumentTypes()
	inputs := make([]ABIArg, len(argTypes))
	for i := range argTypes {
		inputs[i] = ABIArg{Name: names[i], Type: argTypes[i].ABIType()}
	}
	if s.Return != nil {
		base.Outputs = []ABIArg{{Name: "", Type: s.Return.ABIType()}}
	}

	entries := make([]ABIEntry, 0, s.NKeyword()+1)
	for n := s.NPositional(); n <= s.NTotal(); n++ {
		entry := base
		entry.Inputs = inputs[:n]
		entries = append(entries, entry)
	}
	return entries
}
