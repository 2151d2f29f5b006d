// Package kem implements the Kyber-family CPA public-key encryption scheme.
//
// The scheme encrypts a fixed-length bit vector (one bit per ring
// coefficient). Callers that need a symmetric key pack those bits, see
// DecryptKey and the payload package.
package kem

import (
	"fmt"
	"io"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/core"
	"github.com/talari30/Q-file-share/ring"
	"github.com/talari30/Q-file-share/sample"
	"github.com/talari30/Q-file-share/utils"
)

const (
	DomainMatrix    = "qfs-kyber-matrix-v1"
	DomainNoise     = "qfs-kyber-noise-v1"
	DomainEphemeral = "qfs-kyber-ephemeral-v1"
)

// GenerateKeyPair generates a key pair for level using entropy from rng.
// A nil rng reads from crypto/rand.
func GenerateKeyPair(rng io.Reader, level qfs.SecurityLevel) (*qfs.KyberKeyPair, error) {
	params, err := core.GetKyberParams(level)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateKyberParams(params); err != nil {
		return nil, err
	}

	seed, err := utils.RandomBytes(rng, core.SeedLength)
	if err != nil {
		return nil, err
	}

	kp, err := GenerateKeyPairFromSeed(params, seed)
	utils.Zeroize(seed)
	return kp, err
}

// GenerateKeyPairFromSeed generates a deterministic key pair.
//
// The seed is split into a matrix seed rho and a noise seed sigma. The
// secret s and error e are centered binomial draws from SHAKE256(sigma),
// and the public key is (rho, t = A*s + e mod q).
func GenerateKeyPairFromSeed(params qfs.KyberParams, seed []byte) (*qfs.KyberKeyPair, error) {
	if err := core.ValidateKyberParams(params); err != nil {
		return nil, err
	}
	if len(seed) < core.SeedLength {
		return nil, fmt.Errorf("%w: seed must be at least %d bytes", qfs.ErrInvalidSeed, core.SeedLength)
	}
	if err := utils.ValidateSeedEntropy(seed); err != nil {
		return nil, fmt.Errorf("%w: %v", qfs.ErrInvalidSeed, err)
	}

	q := int64(params.Q)
	rho := utils.HashWithDomain(DomainMatrix, seed)
	sigma := utils.HashWithDomain(DomainNoise, seed)
	defer utils.Zeroize(sigma)

	noise := utils.NewShake256(sigma)
	s, err := sample.NoiseVector(noise, params.K, params.N, params.Eta)
	if err != nil {
		return nil, err
	}
	e, err := sample.NoiseVector(noise, params.K, params.N, params.Eta)
	if err != nil {
		return nil, err
	}
	defer ring.Wipe(e)

	pk := qfs.NewKyberPublicKey(params, rho, nil)
	as, err := ring.MatVecMul(Matrix(pk), s, q, false)
	if err != nil {
		return nil, err
	}
	t, err := ring.AddVectors(as, e)
	if err != nil {
		return nil, err
	}
	pk.T = ring.ReduceVector(t, q)

	return &qfs.KyberKeyPair{
		PublicKey: pk,
		SecretKey: &qfs.KyberSecretKey{S: s, Params: params},
	}, nil
}

// Matrix returns the public matrix of pk, expanding it from the seed on
// first use. Keys built without NewKyberPublicKey expand on every call.
func Matrix(pk *qfs.KyberPublicKey) qfs.Matrix {
	p := pk.Params
	return pk.Cache.Get(func() qfs.Matrix {
		return sample.ExpandMatrixKyber(pk.Seed, p.K, p.K, int64(p.Q), p.N)
	})
}

// Encrypt encrypts a fresh random N-bit vector under pk.
// The bit vector is returned in the result's Key field for the caller's
// own use; only the ciphertext is meant to be transmitted.
func Encrypt(rng io.Reader, pk *qfs.KyberPublicKey) (*qfs.EncryptionResult, error) {
	if err := ValidatePublicKey(pk); err != nil {
		return nil, err
	}

	keyBytes, err := utils.RandomBytes(rng, pk.Params.N/8)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(keyBytes)

	coins, err := utils.RandomBytes(rng, core.SeedLength)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(coins)

	return EncryptDeterministic(pk, utils.BytesToBits(keyBytes), coins)
}

// EncryptDeterministic encrypts msg, one 0/1 entry per coefficient, using
// coins to seed the ephemeral noise.
//
//	u = A^T*r + e1 mod q
//	v = <t, r> + e2 + ceil(q/2)*msg mod q
func EncryptDeterministic(pk *qfs.KyberPublicKey, msg []uint8, coins []byte) (*qfs.EncryptionResult, error) {
	if err := ValidatePublicKey(pk); err != nil {
		return nil, err
	}
	params := pk.Params
	q := int64(params.Q)

	m, err := encodeMessage(msg, params.N, q)
	if err != nil {
		return nil, err
	}
	if len(coins) != core.SeedLength {
		return nil, fmt.Errorf("%w: coins must be %d bytes", qfs.ErrInvalidSeed, core.SeedLength)
	}

	noise := utils.NewShake256WithDomain(DomainEphemeral, coins)
	r, err := sample.NoiseVector(noise, params.K, params.N, params.Eta)
	if err != nil {
		return nil, err
	}
	e1, err := sample.NoiseVector(noise, params.K, params.N, params.Eta)
	if err != nil {
		return nil, err
	}
	e2, err := sample.CenteredBinomial(noise, params.N, params.Eta)
	if err != nil {
		return nil, err
	}
	defer ring.Wipe(qfs.PolyVector{e2})
	defer ring.Wipe(e1)
	defer ring.Wipe(r)

	u, err := ring.MatVecMul(Matrix(pk), r, q, true)
	if err != nil {
		return nil, err
	}
	if u, err = ring.AddVectors(u, e1); err != nil {
		return nil, err
	}

	tr, err := ring.InnerProduct(pk.T, r, q)
	if err != nil {
		return nil, err
	}
	v := ring.Add(ring.Add(tr, e2), m)

	return &qfs.EncryptionResult{
		Ciphertext: qfs.KyberCiphertext{
			U: ring.ReduceVector(u, q),
			V: ring.ModQ(v, q),
		},
		Key: append([]uint8(nil), msg...),
	}, nil
}

// Decrypt recovers the bit vector from ct: m' = v - <s, u> mod q, and each
// coefficient decodes to the nearer of 0 and ceil(q/2).
func Decrypt(sk *qfs.KyberSecretKey, ct *qfs.KyberCiphertext) ([]uint8, error) {
	if err := validateSecretKey(sk); err != nil {
		return nil, err
	}
	params := sk.Params
	q := int64(params.Q)
	if err := validateCiphertext(params, ct); err != nil {
		return nil, err
	}

	su, err := ring.InnerProduct(sk.S, ct.U, q)
	if err != nil {
		return nil, err
	}
	return decodeMessage(ring.ModQ(ring.Sub(ct.V, su), q), q), nil
}

// DecryptKey decrypts ct and packs the bits into bytes, most significant
// bit first.
func DecryptKey(sk *qfs.KyberSecretKey, ct *qfs.KyberCiphertext) ([]byte, error) {
	bits, err := Decrypt(sk, ct)
	if err != nil {
		return nil, err
	}
	return utils.BitsToBytes(bits)
}

// ValidatePublicKey checks the parameters, seed and shape of pk.
func ValidatePublicKey(pk *qfs.KyberPublicKey) error {
	if pk == nil {
		return fmt.Errorf("%w: nil public key", qfs.ErrEncoding)
	}
	if err := core.ValidateKyberParams(pk.Params); err != nil {
		return err
	}
	if len(pk.Seed) != core.SeedLength {
		return fmt.Errorf("%w: matrix seed must be %d bytes", qfs.ErrEncoding, core.SeedLength)
	}
	if err := ring.CheckShape(pk.T, pk.Params.K, pk.Params.N); err != nil {
		return err
	}
	return ring.CheckRange(pk.T, 0, int64(pk.Params.Q)-1)
}

func validateSecretKey(sk *qfs.KyberSecretKey) error {
	if sk == nil {
		return fmt.Errorf("%w: nil secret key", qfs.ErrEncoding)
	}
	if err := core.ValidateKyberParams(sk.Params); err != nil {
		return err
	}
	return ring.CheckShape(sk.S, sk.Params.K, sk.Params.N)
}

func validateCiphertext(params qfs.KyberParams, ct *qfs.KyberCiphertext) error {
	if ct == nil {
		return fmt.Errorf("%w: nil ciphertext", qfs.ErrEncoding)
	}
	if err := ring.CheckShape(ct.U, params.K, params.N); err != nil {
		return err
	}
	if len(ct.V) != params.N {
		return fmt.Errorf("%w: v has length %d, want %d", qfs.ErrDimensionMismatch, len(ct.V), params.N)
	}
	return nil
}

// encodeMessage scales each bit to 0 or ceil(q/2).
func encodeMessage(msg []uint8, n int, q int64) (qfs.Polynomial, error) {
	if len(msg) != n {
		return nil, fmt.Errorf("%w: message has %d bits, want %d", qfs.ErrDimensionMismatch, len(msg), n)
	}
	half := (q + 1) / 2
	m := make(qfs.Polynomial, n)
	for i, bit := range msg {
		if bit > 1 {
			return nil, fmt.Errorf("%w: message entry %d is not a bit", qfs.ErrEncoding, i)
		}
		m[i] = int64(bit) * half
	}
	return m, nil
}

// decodeMessage maps each coefficient in [0, q) to 1 when it is strictly
// closer to ceil(q/2) than to 0 (wrapping), else 0.
func decodeMessage(m qfs.Polynomial, q int64) []uint8 {
	half := (q + 1) / 2
	bits := make([]uint8, len(m))
	for i, c := range m {
		toHalf := c - half
		if toHalf < 0 {
			toHalf = -toHalf
		}
		toZero := min(c, q-c)
		if toHalf < toZero {
			bits[i] = 1
		}
	}
	return bits
}
