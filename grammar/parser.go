package grammar

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

var parser = buildParser()

func buildParser() *participle.Parser[Signature] {
	p, err := participle.Build[Signature](
		participle.Lexer(SignatureLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build signature parser: %w", err))
	}

	return p
}

// ParseSignature parses signature text into its components.
func ParseSignature(text string) (*Signature, error) {
	return parser.ParseString("", text)
}

// Canonicalize parses text and returns the canonical form used for selector
// hashing: no whitespace, no parameter names, "uint"/"int" widened to 256 bits.
func Canonicalize(text string) (string, error) {
	sig, err := ParseSignature(text)
	if err != nil {
		return "", err
	}
	return sig.Canonical(), nil
}
