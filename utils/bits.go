package utils

import "errors"

// BytesToBits expands data into one 0/1 entry per bit, most significant bit
// of each byte first.
func BytesToBits(data []byte) []uint8 {
	bits := make([]uint8, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b >> (7 - j)) & 1
		}
	}
	return bits
}

// BitsToBytes packs a 0/1 vector into bytes, most significant bit first.
// The length must be a multiple of 8 and every entry must be 0 or 1.
func BitsToBytes(bits []uint8) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, errors.New("bit vector length must be a multiple of 8")
	}
	out := make([]byte, len(bits)/8)
	for i, bit := range bits {
		if bit > 1 {
			return nil, errors.New("bit vector entries must be 0 or 1")
		}
		out[i/8] |= bit << (7 - i%8)
	}
	return out, nil
}
