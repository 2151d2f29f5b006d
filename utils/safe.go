package utils

import (
	"encoding/binary"
	"errors"
	"math"
)

// Decoder limits. Every length prefix read from untrusted input is checked
// against one of these before anything is allocated.
const (
	// MaxRingDegree is the largest polynomial length accepted by decoders.
	MaxRingDegree = 1 << 12

	// MaxModuleRank is the largest vector length accepted by decoders.
	MaxModuleRank = 64

	// MaxBlobLength is the largest length-prefixed byte field accepted by decoders.
	MaxBlobLength = 1 << 10
)

var (
	// ErrOverflow indicates an integer overflow occurred.
	ErrOverflow = errors.New("integer overflow")

	// ErrExceedsLimit indicates a length prefix above the decoder limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates a negative length or offset.
	ErrInvalidLength = errors.New("invalid length")

	// ErrTruncated indicates the input ended inside a field.
	ErrTruncated = errors.New("truncated input")
)

// SafeMultiply returns a*b for non-negative a and b, or ErrOverflow.
func SafeMultiply(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, ErrInvalidLength
	}
	if a != 0 && b > math.MaxInt/a {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// SafeReadLength reads the little-endian uint32 length prefix at offset
// and checks it against maxAllowed. It returns the length and the offset
// just past the prefix.
func SafeReadLength(data []byte, offset, maxAllowed int) (length int, newOffset int, err error) {
	if err := ValidateSliceAccess(data, offset, 4); err != nil {
		return 0, offset, err
	}
	raw := binary.LittleEndian.Uint32(data[offset:])
	if uint64(raw) > uint64(maxAllowed) {
		return 0, offset, ErrExceedsLimit
	}
	return int(raw), offset + 4, nil
}

// ValidateSliceAccess checks that data[offset:offset+size] is in bounds.
func ValidateSliceAccess(data []byte, offset, size int) error {
	switch {
	case offset < 0 || size < 0:
		return ErrInvalidLength
	case offset > math.MaxInt-size:
		return ErrOverflow
	case offset+size > len(data):
		return ErrTruncated
	}
	return nil
}
