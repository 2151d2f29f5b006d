// Package qfileshare implements the lattice cryptography behind Q-file-share.
//
// It provides a CPA-secure public-key encryption scheme from the Kyber family
// and a Fiat-Shamir-with-aborts signature scheme from the Dilithium family.
// Both operate over R_q = Z_q[X]/(X^N+1) and use Karatsuba multiplication
// with explicit ring reduction instead of the NTT.
//
// WARNING: This is an educational construction. It is not constant-time and
// it is not compatible with FIPS 203 or FIPS 204 encodings. DO NOT use it to
// protect sensitive data.
package qfileshare

import "sync"

// SecurityLevel names a parameter set.
type SecurityLevel string

const (
	// Kyber512 is the k=2 encryption parameter set.
	Kyber512 SecurityLevel = "KYBER-512"
	// Kyber768 is the k=3 encryption parameter set.
	Kyber768 SecurityLevel = "KYBER-768"
	// KyberToy is a tiny encryption parameter set for tests.
	KyberToy SecurityLevel = "KYBER-TOY"

	// Dilithium3 is the 6x5 signature parameter set.
	Dilithium3 SecurityLevel = "DILITHIUM-3"
	// Dilithium5 is the 8x7 signature parameter set.
	Dilithium5 SecurityLevel = "DILITHIUM-5"
	// DilithiumToy is a tiny signature parameter set (N=8) for tests.
	DilithiumToy SecurityLevel = "DILITHIUM-TOY"
)

// =============================================================================
// Parameter Types
// =============================================================================

// KyberParams contains the parameters of the encryption scheme.
type KyberParams struct {
	Level SecurityLevel `json:"level"`
	N     int           `json:"n"`   // Ring degree
	Q     int           `json:"q"`   // Prime modulus
	K     int           `json:"k"`   // Module rank
	Eta   int           `json:"eta"` // Centered binomial order
	Du    int           `json:"du"`  // Compression bits for u
	Dv    int           `json:"dv"`  // Compression bits for v
}

// DilithiumParams contains the parameters of the signature scheme.
type DilithiumParams struct {
	Level  SecurityLevel `json:"level"`
	N      int           `json:"n"`      // Ring degree
	Q      int           `json:"q"`      // Prime modulus
	K      int           `json:"k"`      // Rows of A
	L      int           `json:"l"`      // Columns of A
	Eta    int           `json:"eta"`    // Secret coefficient bound
	Tau    int           `json:"tau"`    // Challenge weight
	Beta   int           `json:"beta"`   // Rejection slack, at least Tau*Eta
	Gamma1 int           `json:"gamma1"` // Mask range
	Gamma2 int           `json:"gamma2"` // Low-order rounding range
}

// =============================================================================
// Ring Types
// =============================================================================

// Polynomial is an element of R_q stored as N signed coefficients.
// Whether the coefficients are in [0, q) or centered is up to the caller.
type Polynomial []int64

// PolyVector is a vector of polynomials of length k or l.
type PolyVector []Polynomial

// Matrix is a rows x cols grid of polynomials.
type Matrix [][]Polynomial

// LazyMatrix derives a matrix on first use and caches it.
// A nil *LazyMatrix derives on every call.
type LazyMatrix struct {
	once sync.Once
	m    Matrix
}

// Get returns the cached matrix, calling derive the first time.
func (l *LazyMatrix) Get(derive func() Matrix) Matrix {
	if l == nil {
		return derive()
	}
	l.once.Do(func() {
		l.m = derive()
	})
	return l.m
}

// =============================================================================
// Encryption Types
// =============================================================================

// KyberPublicKey holds the matrix seed and t = A*s + e.
// The matrix itself is never serialized.
type KyberPublicKey struct {
	Seed   []byte      `json:"seed"`
	T      PolyVector  `json:"t"`
	Params KyberParams `json:"params"`

	Cache *LazyMatrix `json:"-"`
}

// NewKyberPublicKey returns a public key with a fresh matrix cache.
func NewKyberPublicKey(params KyberParams, seed []byte, t PolyVector) *KyberPublicKey {
	return &KyberPublicKey{
		Seed:   seed,
		T:      t,
		Params: params,
		Cache:  &LazyMatrix{},
	}
}

// KyberSecretKey is the secret vector s.
type KyberSecretKey struct {
	S      PolyVector  `json:"s"`
	Params KyberParams `json:"params"`
}

// KyberKeyPair contains both keys.
type KyberKeyPair struct {
	PublicKey *KyberPublicKey
	SecretKey *KyberSecretKey
}

// KyberCiphertext is the pair (u, v).
type KyberCiphertext struct {
	U PolyVector `json:"u"`
	V Polynomial `json:"v"`
}

// EncryptionResult is returned to the encrypting party. Key holds the
// encrypted bit vector; only the ciphertext is meant to leave the caller.
type EncryptionResult struct {
	Ciphertext KyberCiphertext `json:"ciphertext"`
	Key        []uint8         `json:"key"`
}

// =============================================================================
// Signature Types
// =============================================================================

// DilithiumPublicKey holds (A, t). Seed regenerates A after decoding.
type DilithiumPublicKey struct {
	Seed   []byte          `json:"seed"`
	A      Matrix          `json:"-"`
	T      PolyVector      `json:"t"`
	Params DilithiumParams `json:"params"`
}

// DilithiumSecretKey holds (A, t, s1, s2).
type DilithiumSecretKey struct {
	Seed   []byte          `json:"seed"`
	A      Matrix          `json:"-"`
	T      PolyVector      `json:"t"`
	S1     PolyVector      `json:"s1"`
	S2     PolyVector      `json:"s2"`
	Params DilithiumParams `json:"params"`
}

// DilithiumKeyPair contains both keys.
type DilithiumKeyPair struct {
	PublicKey *DilithiumPublicKey
	SecretKey *DilithiumSecretKey
}

// Signature is the pair (z, cp).
type Signature struct {
	Z  PolyVector `json:"z"`
	CP []byte     `json:"cp"`
}
