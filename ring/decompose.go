package ring

import (
	qfs "github.com/talari30/Q-file-share"
)

// Decompose splits r into (r1, r0) with r = r1*alpha + r0 mod q and r0
// centered modulo alpha. When r - r0 == q - 1 the quotient would equal
// (q-1)/alpha, so it is folded to (0, r0-1) to keep r1 in [0, (q-1)/alpha).
func Decompose(r, alpha, q int64) (int64, int64) {
	r = ModPlus(r, q)
	r0 := ModSymmetric(r, alpha)
	if r-r0 == q-1 {
		return 0, r0 - 1
	}
	return (r - r0) / alpha, r0
}

// HighBits returns the r1 component of Decompose.
func HighBits(r, alpha, q int64) int64 {
	r1, _ := Decompose(r, alpha, q)
	return r1
}

// LowBits returns the r0 component of Decompose.
func LowBits(r, alpha, q int64) int64 {
	_, r0 := Decompose(r, alpha, q)
	return r0
}

// HighBitsPoly applies HighBits to every coefficient.
func HighBitsPoly(p qfs.Polynomial, alpha, q int64) qfs.Polynomial {
	out := make(qfs.Polynomial, len(p))
	for i, v := range p {
		out[i] = HighBits(v, alpha, q)
	}
	return out
}

// LowBitsPoly applies LowBits to every coefficient.
func LowBitsPoly(p qfs.Polynomial, alpha, q int64) qfs.Polynomial {
	out := make(qfs.Polynomial, len(p))
	for i, v := range p {
		out[i] = LowBits(v, alpha, q)
	}
	return out
}

// HighBitsVector applies HighBits to every coefficient of v.
func HighBitsVector(v qfs.PolyVector, alpha, q int64) qfs.PolyVector {
	out := make(qfs.PolyVector, len(v))
	for i := range v {
		out[i] = HighBitsPoly(v[i], alpha, q)
	}
	return out
}

// LowBitsVector applies LowBits to every coefficient of v.
func LowBitsVector(v qfs.PolyVector, alpha, q int64) qfs.PolyVector {
	out := make(qfs.PolyVector, len(v))
	for i := range v {
		out[i] = LowBitsPoly(v[i], alpha, q)
	}
	return out
}
