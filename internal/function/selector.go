package function

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// MethodID pairs a canonical signature with its 4-byte selector.
type MethodID struct {
	Signature string
	Selector  uint32
	Arity     int
}

func (m MethodID) Hex() string {
	return FormatSelector(m.Selector)
}

// Selector hashes a canonical signature and returns the first four bytes
// of the digest.
func Selector(signature string) uint32 {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(signature))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint32(sum[:4])
}

func FormatSelector(selector uint32) string {
	return fmt.Sprintf("0x%08x", selector)
}

// MethodIDs returns one entry per valid arity, from positional-only up to
// every keyword parameter included.
func (s *Signature) MethodIDs() []MethodID {
	ids := make([]MethodID, 0, s.NKeyword()+1)
	for n := s.NPositional(); n <= s.NTotal(); n++ {
		sig := s.abiSignature(n)
		ids = append(ids, MethodID{Signature: sig, Selector: Selector(sig), Arity: n})
	}
	return ids
}

// abiSignature renders the signature over the first n parameters.
func (s *Signature) abiSignature(n int) string {
	argTypes := s.ArgumentTypes()[:n]
	names := make([]string, n)
	for i, t := range argTypes {
		names[i] = t.ABIType()
	}
	return s.Name + "(" + strings.Join(names, ",") + ")"
}
