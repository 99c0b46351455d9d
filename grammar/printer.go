package grammar

import (
	"strconv"
	"strings"
)

var aliases = map[string]string{
	"uint": "uint256",
	"int":  "int256",
	"byte": "bytes1",
}

func (s *Signature) Canonical() string {
	types := make([]string, len(s.Params))
	for i, p := range s.Params {
		types[i] = p.Type.Canonical()
	}
	return s.Name + "(" + strings.Join(types, ",") + ")"
}

// TypeNames returns the canonical parameter type names in order.
func (s *Signature) TypeNames() []string {
	types := make([]string, len(s.Params))
	for i, p := range s.Params {
		types[i] = p.Type.Canonical()
	}
	return types
}

func (t *Type) Canonical() string {
	var b strings.Builder
	if t.Tuple != nil {
		parts := make([]string, len(t.Tuple.Components))
		for i, c := range t.Tuple.Components {
			parts[i] = c.Canonical()
		}
		b.WriteString("(" + strings.Join(parts, ",") + ")")
	} else if alias, ok := aliases[t.Name]; ok {
		b.WriteString(alias)
	} else {
		b.WriteString(t.Name)
	}
	for _, a := range t.Arrays {
		if a.Size == nil {
			b.WriteString("[]")
		} else {
			b.WriteString("[" + strconv.Itoa(*a.Size) + "]")
		}
	}
	return b.String()
}
