// Package ring implements arithmetic in R_q = Z_q[X]/(X^N+1).
//
// Multiplication uses a Karatsuba split down to a schoolbook base case and
// then folds the double-length product back with X^N = -1. Products are not
// reduced modulo q; callers reduce with ModQ or SymModQ when they need to.
package ring

import (
	qfs "github.com/talari30/Q-file-share"
)

// karatsubaThreshold is the operand length below which Mul falls back to
// the schoolbook product.
const karatsubaThreshold = 32

// ModPlus returns r mod alpha in [0, alpha).
func ModPlus(r, alpha int64) int64 {
	return ((r % alpha) + alpha) % alpha
}

// ModSymmetric returns r mod alpha in the centered range. For even alpha the
// range is [-alpha/2, alpha/2-1]; for odd alpha it is [-(alpha-1)/2, (alpha-1)/2].
func ModSymmetric(r, alpha int64) int64 {
	offset := alpha / 2
	if alpha%2 != 0 {
		offset = (alpha - 1) / 2
	}
	return ModPlus(r+offset, alpha) - offset
}

// Add returns a + b coefficient-wise. Shorter operands are zero-padded.
func Add(a, b qfs.Polynomial) qfs.Polynomial {
	n := max(len(a), len(b))
	out := make(qfs.Polynomial, n)
	copy(out, a)
	for i, v := range b {
		out[i] += v
	}
	return out
}

// Sub returns a - b coefficient-wise. Shorter operands are zero-padded.
func Sub(a, b qfs.Polynomial) qfs.Polynomial {
	n := max(len(a), len(b))
	out := make(qfs.Polynomial, n)
	copy(out, a)
	for i, v := range b {
		out[i] -= v
	}
	return out
}

// Mul returns a*b mod (X^n + 1) where n is the longer operand length.
// Coefficients are not reduced modulo q.
func Mul(a, b qfs.Polynomial) qfs.Polynomial {
	n := max(len(a), len(b))
	if n == 0 {
		return qfs.Polynomial{}
	}
	return ReduceRing(karatsuba(pad(a, n), pad(b, n)), n)
}

// ReduceRing folds an unreduced product into n coefficients using
// X^n = -1: every wrap past n flips the sign.
func ReduceRing(c []int64, n int) qfs.Polynomial {
	out := make(qfs.Polynomial, n)
	for i, v := range c {
		if (i/n)%2 == 0 {
			out[i%n] += v
		} else {
			out[i%n] -= v
		}
	}
	return out
}

// karatsuba multiplies two equal-length operands into 2n-1 coefficients.
func karatsuba(a, b []int64) []int64 {
	n := len(a)
	if n <= karatsubaThreshold {
		return schoolbook(a, b)
	}

	h := n / 2
	a0, a1 := a[:h], a[h:]
	b0, b1 := b[:h], b[h:]

	z0 := karatsuba(a0, b0)
	z2 := karatsuba(a1, b1)
	// a1 and b1 have n-h >= h coefficients; the sums take their length.
	z1 := karatsuba(addPadded(a1, a0), addPadded(b1, b0))

	out := make([]int64, 2*n-1)
	for i, v := range z0 {
		out[i] += v
		z1[i] -= v
	}
	for i, v := range z2 {
		out[i+2*h] += v
		z1[i] -= v
	}
	for i, v := range z1 {
		out[i+h] += v
	}
	return out
}

func schoolbook(a, b []int64) []int64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]int64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// addPadded returns long + short, where len(short) <= len(long).
func addPadded(long, short []int64) []int64 {
	out := make([]int64, len(long))
	copy(out, long)
	for i, v := range short {
		out[i] += v
	}
	return out
}

func pad(p qfs.Polynomial, n int) []int64 {
	if len(p) == n {
		return p
	}
	out := make([]int64, n)
	copy(out, p)
	return out
}

// ModQ reduces every coefficient into [0, q).
func ModQ(p qfs.Polynomial, q int64) qfs.Polynomial {
	out := make(qfs.Polynomial, len(p))
	for i, v := range p {
		out[i] = ModPlus(v, q)
	}
	return out
}

// SymModQ reduces every coefficient into the centered range modulo q.
func SymModQ(p qfs.Polynomial, q int64) qfs.Polynomial {
	out := make(qfs.Polynomial, len(p))
	for i, v := range p {
		out[i] = ModSymmetric(v, q)
	}
	return out
}

// InfinityNorm returns the largest absolute coefficient of p.
func InfinityNorm(p qfs.Polynomial) int64 {
	var norm int64
	for _, v := range p {
		if v < 0 {
			v = -v
		}
		if v > norm {
			norm = v
		}
	}
	return norm
}

// NormBelow reports whether every coefficient satisfies |c| < bound.
func NormBelow(p qfs.Polynomial, bound int64) bool {
	return InfinityNorm(p) < bound
}
