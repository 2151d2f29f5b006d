package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"runtime"
)

// RandReader is the entropy source used when a caller passes a nil reader.
var RandReader io.Reader = rand.Reader

// Reader returns r, or RandReader when r is nil.
func Reader(r io.Reader) io.Reader {
	if r == nil {
		return RandReader
	}
	return r
}

// RandomBytes reads exactly n bytes from r (crypto/rand when r is nil).
func RandomBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(Reader(r), buf); err != nil {
		return nil, fmt.Errorf("reading entropy: %w", err)
	}
	return buf, nil
}

// RandomIntFrom draws a uniform integer in [0, n) from r. It reads the
// fewest big-endian bytes that cover n-1, masks them to its bit length and
// retries on values >= n, so at most half of the draws are rejected.
func RandomIntFrom(r io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("bound must be positive")
	}
	if n == 1 {
		return 0, nil
	}

	width := bits.Len(uint(n - 1))
	nbytes := (width + 7) / 8
	mask := uint64(1)<<width - 1

	r = Reader(r)
	var buf [8]byte
	for {
		if _, err := io.ReadFull(r, buf[8-nbytes:]); err != nil {
			return 0, fmt.Errorf("reading entropy: %w", err)
		}
		if v := binary.BigEndian.Uint64(buf[:]) & mask; v < uint64(n) {
			return int(v), nil
		}
	}
}

// minSeedDiversity is the fewest distinct byte values a seed may hold.
const minSeedDiversity = 8

// ValidateSeedEntropy rejects key-generation seeds that are shorter than
// 32 bytes, constant, a +1 or -1 byte ramp, or built from fewer than
// eight distinct byte values. It catches mistakes, not weak RNGs.
func ValidateSeedEntropy(seed []byte) error {
	if len(seed) < 32 {
		return errors.New("seed must be at least 32 bytes")
	}

	ascending, descending := true, true
	var seen [256]bool
	distinct := 0
	for i, b := range seed {
		if !seen[b] {
			seen[b] = true
			distinct++
		}
		if i > 0 {
			ascending = ascending && b == seed[i-1]+1
			descending = descending && b == seed[i-1]-1
		}
	}

	switch {
	case distinct == 1:
		return errors.New("seed has low entropy: all bytes are identical")
	case ascending || descending:
		return errors.New("seed has low entropy: sequential pattern detected")
	case distinct < minSeedDiversity:
		return errors.New("seed has low entropy: insufficient byte diversity")
	}
	return nil
}

// ConstantTimeEqual reports whether a and b are equal without leaking
// where they differ. Only the lengths are compared in variable time.
func ConstantTimeEqual(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}

// Zeroize overwrites b with zeros.
func Zeroize(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

// ZeroizeInt64 overwrites s with zeros. Secret polynomials go through it
// once they are no longer needed.
func ZeroizeInt64(s []int64) {
	clear(s)
	runtime.KeepAlive(s)
}
