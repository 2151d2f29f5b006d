package ring

import (
	"fmt"

	qfs "github.com/talari30/Q-file-share"
)

// Compress maps x in [0, q) to round(2^d * x / q) mod 2^d.
func Compress(x int64, d uint, q int64) int64 {
	x = ModPlus(x, q)
	return (((x << d) + q/2) / q) & (1<<d - 1)
}

// Decompress maps y in [0, 2^d) to round(q * y / 2^d).
func Decompress(y int64, d uint, q int64) int64 {
	return (y*q + 1<<(d-1)) >> d
}

// CompressPoly compresses every coefficient of p to d bits.
func CompressPoly(p qfs.Polynomial, d uint, q int64) qfs.Polynomial {
	out := make(qfs.Polynomial, len(p))
	for i, v := range p {
		out[i] = Compress(v, d, q)
	}
	return out
}

// DecompressPoly reverses CompressPoly up to rounding error.
func DecompressPoly(p qfs.Polynomial, d uint, q int64) qfs.Polynomial {
	out := make(qfs.Polynomial, len(p))
	for i, v := range p {
		out[i] = Decompress(v, d, q)
	}
	return out
}

// PackBits packs the low d bits of each value, least significant bit first.
// With d = 4 each byte holds values[2i] + 16*values[2i+1].
func PackBits(values []int64, d uint) []byte {
	out := make([]byte, (len(values)*int(d)+7)/8)
	bit := 0
	for _, v := range values {
		for j := uint(0); j < d; j++ {
			if (v>>j)&1 == 1 {
				out[bit/8] |= 1 << (bit % 8)
			}
			bit++
		}
	}
	return out
}

// UnpackBits reads count d-bit values written by PackBits.
func UnpackBits(data []byte, d uint, count int) ([]int64, error) {
	need := (count*int(d) + 7) / 8
	if len(data) != need {
		return nil, fmt.Errorf("%w: packed length %d, want %d", qfs.ErrEncoding, len(data), need)
	}
	out := make([]int64, count)
	bit := 0
	for i := range out {
		var v int64
		for j := uint(0); j < d; j++ {
			v |= int64((data[bit/8]>>(bit%8))&1) << j
			bit++
		}
		out[i] = v
	}
	return out, nil
}
