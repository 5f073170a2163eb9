package keeper

import (
	"math/bits"

	"github.com/openalpha/signalpool/x/pool/types"
)

// PowQ16 raises x, a ratio in 1/65536 units, to the n-th power by squaring,
// rescaling after every multiplication. x must fit in 16 bits; n must be
// positive.
func PowQ16(x uint32, n uint64) uint32 {
	if n == 1 {
		return x
	}
	q := n >> 1
	if q == 0 {
		return x
	}
	p := PowQ16(x, q)
	sq := (p * p) >> 16
	if n&1 == 1 {
		return (sq * x) >> 16
	}
	return sq
}

// MulDiv computes a*b/den with a 128-bit intermediate, flooring the result.
// It fails when den is zero or the quotient exceeds 64 bits.
func MulDiv(a, b, den uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if den == 0 || hi >= den {
		return 0, types.ErrOverflow.Wrap("quotient does not fit in 64 bits")
	}
	q, _ := bits.Div64(hi, lo, den)
	return q, nil
}

// MulShift16 computes a*ratio>>16 with a 128-bit intermediate, where ratio
// is in 1/65536 units. The result always fits: ratio < 1<<16.
func MulShift16(a uint64, ratio uint16) uint64 {
	hi, lo := bits.Mul64(a, uint64(ratio))
	return hi<<48 | lo>>16
}
