// Package sign implements the Dilithium-family signature scheme
// (Fiat-Shamir with aborts) over R_q.
package sign

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/core"
	"github.com/talari30/Q-file-share/internal/log"
	"github.com/talari30/Q-file-share/ring"
	"github.com/talari30/Q-file-share/sample"
	"github.com/talari30/Q-file-share/utils"
)

const (
	DomainMatrix = "qfs-dilithium-matrix-v1"
	DomainSecret = "qfs-dilithium-secret-v1"
	DomainMask   = "qfs-dilithium-mask-v1"
)

// ChallengeSeedLength is the length of the commitment hash cp.
const ChallengeSeedLength = 32

// DefaultMaxAttempts bounds the rejection loop when Options.MaxAttempts
// is not set. The named parameter sets accept within a handful of tries.
const DefaultMaxAttempts = 500

// Options tunes signing. The zero value is ready to use.
type Options struct {
	// MaxAttempts caps the number of candidates tried before giving up
	// with ErrAbortExceeded. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// Logger receives a debug record per rejected candidate.
	Logger *slog.Logger
}

func (o *Options) maxAttempts() int {
	if o == nil || o.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return o.MaxAttempts
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return log.Default().Module("sign").Slog()
	}
	return o.Logger
}

// GenerateKeyPair generates a signature key pair for level using entropy
// from rng. A nil rng reads from crypto/rand.
func GenerateKeyPair(rng io.Reader, level qfs.SecurityLevel) (*qfs.DilithiumKeyPair, error) {
	params, err := core.GetDilithiumParams(level)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateDilithiumParams(params); err != nil {
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

// GenerateKeyPairFromSeed generates a deterministic signature key pair.
//
// A is expanded from rho = H(DomainMatrix, seed); s1 and s2 are uniform in
// [-eta, eta] from SHAKE256(H(DomainSecret, seed)); t = A*s1 + s2 mod q.
func GenerateKeyPairFromSeed(params qfs.DilithiumParams, seed []byte) (*qfs.DilithiumKeyPair, error) {
	if err := core.ValidateDilithiumParams(params); err != nil {
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
	sigma := utils.HashWithDomain(DomainSecret, seed)
	defer utils.Zeroize(sigma)

	a := ExpandMatrix(params, rho)
	noise := utils.NewShake256(sigma)
	s1, err := sample.BoundedVector(noise, params.L, params.N, int64(params.Eta))
	if err != nil {
		return nil, err
	}
	s2, err := sample.BoundedVector(noise, params.K, params.N, int64(params.Eta))
	if err != nil {
		return nil, err
	}

	as1, err := ring.MatVecMul(a, s1, q, false)
	if err != nil {
		return nil, err
	}
	t, err := ring.AddVectors(as1, s2)
	if err != nil {
		return nil, err
	}
	t = ring.ReduceVector(t, q)

	return &qfs.DilithiumKeyPair{
		PublicKey: &qfs.DilithiumPublicKey{Seed: rho, A: a, T: t, Params: params},
		SecretKey: &qfs.DilithiumSecretKey{Seed: rho, A: a, T: t, S1: s1, S2: s2, Params: params},
	}, nil
}

// ExpandMatrix derives the k x l public matrix from its seed.
func ExpandMatrix(params qfs.DilithiumParams, seed []byte) qfs.Matrix {
	return sample.ExpandMatrix(seed, params.K, params.L, int64(params.Q), params.N)
}

// Sign signs msg with sk. See SignContext.
func Sign(rng io.Reader, sk *qfs.DilithiumSecretKey, msg []byte, opts *Options) (*qfs.Signature, error) {
	return SignContext(context.Background(), rng, sk, msg, opts)
}

// SignContext runs the rejection loop until a candidate passes both bound
// checks, the attempt budget runs out (ErrAbortExceeded) or ctx is done.
//
// Each attempt draws a fresh mask y with coefficients in (-gamma1, gamma1)
// and computes
//
//	w1 = HighBits(A*y)
//	cp = SHAKE256(msg || pack(w1))
//	z  = y + c*s1
//
// rejecting when ||z|| >= gamma1-beta or ||LowBits(w - c*s2)|| >= gamma2-beta.
func SignContext(ctx context.Context, rng io.Reader, sk *qfs.DilithiumSecretKey, msg []byte, opts *Options) (*qfs.Signature, error) {
	if err := validateSecretKey(sk); err != nil {
		return nil, err
	}
	p := sk.Params
	q := int64(p.Q)
	alpha := int64(2 * p.Gamma2)
	zBound := int64(p.Gamma1 - p.Beta)
	lowBound := int64(p.Gamma2 - p.Beta)

	a := sk.A
	if a == nil {
		a = ExpandMatrix(p, sk.Seed)
	}
	maxAttempts := opts.maxAttempts()
	logger := opts.logger()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		y, err := sampleMask(rng, p)
		if err != nil {
			return nil, err
		}
		w, err := ring.MatVecMul(a, y, q, false)
		if err != nil {
			return nil, err
		}
		cp := commitment(msg, ring.HighBitsVector(w, alpha, q))
		c := sample.Challenge(cp, p.N, p.Tau)

		z, err := ring.AddVectors(y, ring.ScalarMulVector(c, sk.S1))
		if err != nil {
			return nil, err
		}
		z = ring.ReduceVectorSymmetric(z, q)
		ring.Wipe(y)
		if !ring.VectorNormBelow(z, zBound) {
			logger.Debug("signature candidate rejected", "attempt", attempt, "check", "z")
			continue
		}

		r, err := ring.SubVectors(w, ring.ScalarMulVector(c, sk.S2))
		if err != nil {
			return nil, err
		}
		if !ring.VectorNormBelow(ring.LowBitsVector(ring.ReduceVector(r, q), alpha, q), lowBound) {
			logger.Debug("signature candidate rejected", "attempt", attempt, "check", "low bits")
			continue
		}

		logger.Debug("signature accepted", "attempts", attempt)
		return &qfs.Signature{Z: z, CP: cp}, nil
	}
	return nil, fmt.Errorf("%w: no candidate accepted in %d attempts", qfs.ErrAbortExceeded, maxAttempts)
}

// sampleMask draws y from a per-attempt seed so the mask stream never
// repeats across attempts or signatures.
func sampleMask(rng io.Reader, p qfs.DilithiumParams) (qfs.PolyVector, error) {
	seed, err := utils.RandomBytes(rng, core.SeedLength)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(seed)
	return sample.BoundedVector(utils.NewShake256WithDomain(DomainMask, seed), p.L, p.N, int64(p.Gamma1-1))
}

// commitment hashes the message with the high bits packed two per byte.
func commitment(msg []byte, w1 qfs.PolyVector) []byte {
	flat := make([]int64, 0, len(w1)*len(w1[0]))
	for _, p := range w1 {
		flat = append(flat, p...)
	}
	return utils.Shake256(ChallengeSeedLength, msg, ring.PackBits(flat, 4))
}

// Verify reports whether sig is a valid signature on msg under pk. It
// never panics: malformed keys or signatures simply fail to verify.
func Verify(pk *qfs.DilithiumPublicKey, msg []byte, sig *qfs.Signature) bool {
	if pk == nil || sig == nil {
		return false
	}
	p := pk.Params
	if core.ValidateDilithiumParams(p) != nil {
		return false
	}
	if ring.CheckShape(pk.T, p.K, p.N) != nil || ring.CheckShape(sig.Z, p.L, p.N) != nil {
		return false
	}
	if len(sig.CP) != ChallengeSeedLength {
		return false
	}
	if !ring.VectorNormBelow(sig.Z, int64(p.Gamma1-p.Beta)) {
		return false
	}

	q := int64(p.Q)
	a := pk.A
	if a == nil {
		if len(pk.Seed) != core.SeedLength {
			return false
		}
		a = ExpandMatrix(p, pk.Seed)
	}
	if !matrixShape(a, p) {
		return false
	}

	az, err := ring.MatVecMul(a, sig.Z, q, false)
	if err != nil {
		return false
	}
	c := sample.Challenge(sig.CP, p.N, p.Tau)
	w, err := ring.SubVectors(az, ring.ScalarMulVector(c, pk.T))
	if err != nil {
		return false
	}
	w1 := ring.HighBitsVector(ring.ReduceVector(w, q), int64(2*p.Gamma2), q)
	return utils.ConstantTimeEqual(sig.CP, commitment(msg, w1))
}

func matrixShape(a qfs.Matrix, p qfs.DilithiumParams) bool {
	if len(a) != p.K {
		return false
	}
	for _, row := range a {
		if ring.CheckShape(row, p.L, p.N) != nil {
			return false
		}
	}
	return true
}

func validateSecretKey(sk *qfs.DilithiumSecretKey) error {
	if sk == nil {
		return fmt.Errorf("%w: nil secret key", qfs.ErrEncoding)
	}
	p := sk.Params
	if err := core.ValidateDilithiumParams(p); err != nil {
		return err
	}
	if sk.A == nil && len(sk.Seed) != core.SeedLength {
		return fmt.Errorf("%w: matrix seed must be %d bytes", qfs.ErrEncoding, core.SeedLength)
	}
	if sk.A != nil && !matrixShape(sk.A, p) {
		return fmt.Errorf("%w: matrix must be %dx%d", qfs.ErrDimensionMismatch, p.K, p.L)
	}
	if err := ring.CheckShape(sk.S1, p.L, p.N); err != nil {
		return err
	}
	return ring.CheckShape(sk.S2, p.K, p.N)
}
