package ring

import (
	"encoding/binary"
	"fmt"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/utils"
)

// Binary layout shared by every serializer: little-endian uint32 length
// prefixes, and each coefficient as a little-endian int32.

// AppendPoly appends [n][c0]...[cn-1] to buf.
func AppendPoly(buf []byte, p qfs.Polynomial) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p)))
	for _, c := range p {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(c)))
	}
	return buf
}

// AppendVector appends [count] followed by each polynomial.
func AppendVector(buf []byte, v qfs.PolyVector) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v)))
	for _, p := range v {
		buf = AppendPoly(buf, p)
	}
	return buf
}

// AppendBlob appends [len][bytes].
func AppendBlob(buf, blob []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(blob)))
	return append(buf, blob...)
}

// ReadPoly decodes a polynomial written by AppendPoly.
func ReadPoly(data []byte, offset int) (qfs.Polynomial, int, error) {
	n, offset, err := utils.SafeReadLength(data, offset, utils.MaxRingDegree)
	if err != nil {
		return nil, offset, fmt.Errorf("%w: polynomial length: %v", qfs.ErrEncoding, err)
	}
	size, err := utils.SafeMultiply(n, 4)
	if err != nil {
		return nil, offset, fmt.Errorf("%w: %v", qfs.ErrEncoding, err)
	}
	if err := utils.ValidateSliceAccess(data, offset, size); err != nil {
		return nil, offset, fmt.Errorf("%w: polynomial data truncated", qfs.ErrEncoding)
	}
	p := make(qfs.Polynomial, n)
	for i := range p {
		p[i] = int64(int32(binary.LittleEndian.Uint32(data[offset:])))
		offset += 4
	}
	return p, offset, nil
}

// ReadVector decodes a vector written by AppendVector.
func ReadVector(data []byte, offset int) (qfs.PolyVector, int, error) {
	count, offset, err := utils.SafeReadLength(data, offset, utils.MaxModuleRank)
	if err != nil {
		return nil, offset, fmt.Errorf("%w: vector length: %v", qfs.ErrEncoding, err)
	}
	v := make(qfs.PolyVector, count)
	for i := range v {
		v[i], offset, err = ReadPoly(data, offset)
		if err != nil {
			return nil, offset, err
		}
	}
	return v, offset, nil
}

// ReadBlob decodes a byte field written by AppendBlob.
func ReadBlob(data []byte, offset int) ([]byte, int, error) {
	n, offset, err := utils.SafeReadLength(data, offset, utils.MaxBlobLength)
	if err != nil {
		return nil, offset, fmt.Errorf("%w: field length: %v", qfs.ErrEncoding, err)
	}
	if err := utils.ValidateSliceAccess(data, offset, n); err != nil {
		return nil, offset, fmt.Errorf("%w: field data truncated", qfs.ErrEncoding)
	}
	blob := make([]byte, n)
	copy(blob, data[offset:offset+n])
	return blob, offset + n, nil
}

// CheckShape verifies that v holds size polynomials of length n.
func CheckShape(v qfs.PolyVector, size, n int) error {
	if len(v) != size {
		return fmt.Errorf("%w: vector length %d, want %d", qfs.ErrDimensionMismatch, len(v), size)
	}
	for i, p := range v {
		if len(p) != n {
			return fmt.Errorf("%w: polynomial %d has length %d, want %d", qfs.ErrDimensionMismatch, i, len(p), n)
		}
	}
	return nil
}

// CheckRange verifies that every coefficient of v lies in [lo, hi].
func CheckRange(v qfs.PolyVector, lo, hi int64) error {
	for i, p := range v {
		for j, c := range p {
			if c < lo || c > hi {
				return fmt.Errorf("%w: coefficient %d of polynomial %d out of range [%d, %d]", qfs.ErrEncoding, j, i, lo, hi)
			}
		}
	}
	return nil
}
