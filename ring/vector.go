package ring

import (
	"fmt"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/utils"
)

// AddVectors returns a + b polynomial-wise.
func AddVectors(a, b qfs.PolyVector) (qfs.PolyVector, error) {
	if len(a) != len(b) {
		return nil, mismatch("add", len(a), len(b))
	}
	out := make(qfs.PolyVector, len(a))
	for i := range a {
		out[i] = Add(a[i], b[i])
	}
	return out, nil
}

// SubVectors returns a - b polynomial-wise.
func SubVectors(a, b qfs.PolyVector) (qfs.PolyVector, error) {
	if len(a) != len(b) {
		return nil, mismatch("sub", len(a), len(b))
	}
	out := make(qfs.PolyVector, len(a))
	for i := range a {
		out[i] = Sub(a[i], b[i])
	}
	return out, nil
}

// ScalarMulVector multiplies every entry of v by the ring element p.
// The result is not reduced modulo q.
func ScalarMulVector(p qfs.Polynomial, v qfs.PolyVector) qfs.PolyVector {
	out := make(qfs.PolyVector, len(v))
	for i := range v {
		out[i] = Mul(v[i], p)
	}
	return out
}

// InnerProduct returns sum(a[i]*b[i]) reduced into [0, q).
func InnerProduct(a, b qfs.PolyVector, q int64) (qfs.Polynomial, error) {
	if len(a) != len(b) {
		return nil, mismatch("inner product", len(a), len(b))
	}
	if len(a) == 0 {
		return qfs.Polynomial{}, nil
	}
	acc := Mul(a[0], b[0])
	for i := 1; i < len(a); i++ {
		acc = Add(acc, Mul(a[i], b[i]))
	}
	return ModQ(acc, q), nil
}

// MatVecMul returns A*v reduced into [0, q). With transpose set it returns
// A^T*v, swapping which matrix index runs over the vector.
func MatVecMul(a qfs.Matrix, v qfs.PolyVector, q int64, transpose bool) (qfs.PolyVector, error) {
	rows, cols := len(a), 0
	if rows > 0 {
		cols = len(a[0])
	}
	for i := range a {
		if len(a[i]) != cols {
			return nil, fmt.Errorf("%w: ragged matrix row %d", qfs.ErrDimensionMismatch, i)
		}
	}

	inner, outer := cols, rows
	if transpose {
		inner, outer = rows, cols
	}
	if len(v) != inner {
		return nil, mismatch("matrix-vector", inner, len(v))
	}

	out := make(qfs.PolyVector, outer)
	for i := 0; i < outer; i++ {
		var acc qfs.Polynomial
		for j := 0; j < inner; j++ {
			cell := a[i][j]
			if transpose {
				cell = a[j][i]
			}
			acc = Add(acc, Mul(cell, v[j]))
		}
		out[i] = ModQ(acc, q)
	}
	return out, nil
}

// ReduceVector reduces every coefficient of v into [0, q).
func ReduceVector(v qfs.PolyVector, q int64) qfs.PolyVector {
	out := make(qfs.PolyVector, len(v))
	for i := range v {
		out[i] = ModQ(v[i], q)
	}
	return out
}

// ReduceVectorSymmetric reduces every coefficient of v into the centered range.
func ReduceVectorSymmetric(v qfs.PolyVector, q int64) qfs.PolyVector {
	out := make(qfs.PolyVector, len(v))
	for i := range v {
		out[i] = SymModQ(v[i], q)
	}
	return out
}

// VectorNormBelow reports whether every coefficient of v satisfies |c| < bound.
func VectorNormBelow(v qfs.PolyVector, bound int64) bool {
	for _, p := range v {
		if !NormBelow(p, bound) {
			return false
		}
	}
	return true
}

// ZeroVector returns size zero polynomials of length n.
func ZeroVector(size, n int) qfs.PolyVector {
	out := make(qfs.PolyVector, size)
	for i := range out {
		out[i] = make(qfs.Polynomial, n)
	}
	return out
}

// Wipe zeroes every coefficient of v in place.
func Wipe(v qfs.PolyVector) {
	for _, p := range v {
		utils.ZeroizeInt64(p)
	}
}

func mismatch(op string, want, got int) error {
	return fmt.Errorf("%w: %s needs length %d, got %d", qfs.ErrDimensionMismatch, op, want, got)
}
