package optimizer

import (
	"fmt"
	"strings"
)

// Level selects which passes run.
type Level int

const (
	None Level = iota
	Gas
	Codesize
)

var levelNames = map[Level]string{
	None:     "none",
	Gas:      "gas",
	Codesize: "codesize",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts the names printed by String, case-insensitively.
// An empty string is Gas.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return Gas, nil
	}
	for level, name := range levelNames {
		if strings.EqualFold(s, name) {
			return level, nil
		}
	}
	return None, fmt.Errorf("unknown optimization level %q (expected none, gas or codesize)", s)
}
