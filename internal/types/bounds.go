package types

import "github.com/holiman/uint256"

// Bounds returns the largest representable positive value and the largest
// representable negative magnitude (zero for unsigned types).
func (t IntegerT) Bounds() (maxPos, maxNeg *uint256.Int) {
	one := uint256.NewInt(1)
	if !t.Signed {
		if t.Bits >= 256 {
			return new(uint256.Int).SetAllOne(), new(uint256.Int)
		}
		limit := new(uint256.Int).Lsh(one, uint(t.Bits))
		return limit.Sub(limit, one), new(uint256.Int)
	}
	maxNeg = new(uint256.Int).Lsh(one, uint(t.Bits-1))
	maxPos = new(uint256.Int).Sub(maxNeg, one)
	return maxPos, maxNeg
}

// Fits reports whether a literal with the given magnitude and sign is
// representable in t.
func (t IntegerT) Fits(magnitude *uint256.Int, negative bool) bool {
	maxPos, maxNeg := t.Bounds()
	if negative && !magnitude.IsZero() {
		return t.Signed && !magnitude.Gt(maxNeg)
	}
	return !magnitude.Gt(maxPos)
}
