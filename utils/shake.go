// Package utils provides entropy, hashing, bit packing and bounds-checking
// helpers shared by the lattice packages.
package utils

import (
	"sync"

	"golang.org/x/crypto/sha3"
)

var shake256Pool = sync.Pool{
	New: func() interface{} {
		return sha3.NewShake256()
	},
}

// Shake256 computes the SHAKE256 extendable output function (XOF).
// It absorbs every input in order and squeezes outputLen bytes.
func Shake256(outputLen int, inputs ...[]byte) []byte {
	h := shake256Pool.Get().(sha3.ShakeHash)
	defer func() {
		h.Reset()
		shake256Pool.Put(h)
	}()

	for _, in := range inputs {
		h.Write(in)
	}
	output := make([]byte, outputLen)
	_, _ = h.Read(output)
	return output
}

// NewShake128 returns a SHAKE128 stream that has absorbed the inputs.
// The caller owns the returned hash and reads from it as an io.Reader.
func NewShake128(inputs ...[]byte) sha3.ShakeHash {
	h := sha3.NewShake128()
	for _, in := range inputs {
		h.Write(in)
	}
	return h
}

// NewShake256 returns a SHAKE256 stream that has absorbed the inputs.
func NewShake256(inputs ...[]byte) sha3.ShakeHash {
	h := sha3.NewShake256()
	for _, in := range inputs {
		h.Write(in)
	}
	return h
}

// domainPrefix encodes domain as a length byte followed by its bytes.
// Domains are package constants, so an oversized one is a programming error.
func domainPrefix(domain string) []byte {
	if len(domain) > 255 {
		panic("domain string must be at most 255 bytes")
	}
	return append([]byte{byte(len(domain))}, domain...)
}

// HashWithDomain returns SHA3-256(len(domain) || domain || data).
func HashWithDomain(domain string, data []byte) []byte {
	h := sha3.New256()
	h.Write(domainPrefix(domain))
	h.Write(data)
	return h.Sum(nil)
}

// NewShake256WithDomain returns a SHAKE256 stream over data with the same
// domain prefix as HashWithDomain.
func NewShake256WithDomain(domain string, data []byte) sha3.ShakeHash {
	return NewShake256(domainPrefix(domain), data)
}
