package sign

import (
	"fmt"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/core"
	"github.com/talari30/Q-file-share/ring"
)

// SerializePublicKey encodes pk as [level][seed][t]. A is not stored; it
// is re-expanded from the seed on decode.
func SerializePublicKey(pk *qfs.DilithiumPublicKey) []byte {
	buf := ring.AppendBlob(nil, []byte(pk.Params.Level))
	buf = ring.AppendBlob(buf, pk.Seed)
	return ring.AppendVector(buf, pk.T)
}

// DeserializePublicKey decodes a public key written by SerializePublicKey.
func DeserializePublicKey(data []byte) (*qfs.DilithiumPublicKey, error) {
	params, offset, err := readParams(data)
	if err != nil {
		return nil, err
	}
	seed, offset, err := readSeed(data, offset)
	if err != nil {
		return nil, err
	}
	t, offset, err := ring.ReadVector(data, offset)
	if err != nil {
		return nil, err
	}
	if err := checkTrailing(data, offset); err != nil {
		return nil, err
	}
	if err := checkVector(t, params.K, params.N, 0, int64(params.Q)-1); err != nil {
		return nil, err
	}

	return &qfs.DilithiumPublicKey{
		Seed:   seed,
		A:      ExpandMatrix(params, seed),
		T:      t,
		Params: params,
	}, nil
}

// SerializeSecretKey encodes sk as [level][seed][t][s1][s2].
func SerializeSecretKey(sk *qfs.DilithiumSecretKey) []byte {
	buf := ring.AppendBlob(nil, []byte(sk.Params.Level))
	buf = ring.AppendBlob(buf, sk.Seed)
	buf = ring.AppendVector(buf, sk.T)
	buf = ring.AppendVector(buf, sk.S1)
	return ring.AppendVector(buf, sk.S2)
}

// DeserializeSecretKey decodes a secret key written by SerializeSecretKey.
func DeserializeSecretKey(data []byte) (*qfs.DilithiumSecretKey, error) {
	params, offset, err := readParams(data)
	if err != nil {
		return nil, err
	}
	seed, offset, err := readSeed(data, offset)
	if err != nil {
		return nil, err
	}
	vectors := make([]qfs.PolyVector, 3)
	for i := range vectors {
		if vectors[i], offset, err = ring.ReadVector(data, offset); err != nil {
			return nil, err
		}
	}
	if err := checkTrailing(data, offset); err != nil {
		return nil, err
	}

	t, s1, s2 := vectors[0], vectors[1], vectors[2]
	eta := int64(params.Eta)
	if err := checkVector(t, params.K, params.N, 0, int64(params.Q)-1); err != nil {
		return nil, err
	}
	if err := checkVector(s1, params.L, params.N, -eta, eta); err != nil {
		return nil, err
	}
	if err := checkVector(s2, params.K, params.N, -eta, eta); err != nil {
		return nil, err
	}

	return &qfs.DilithiumSecretKey{
		Seed:   seed,
		A:      ExpandMatrix(params, seed),
		T:      t,
		S1:     s1,
		S2:     s2,
		Params: params,
	}, nil
}

// PublicKey returns the public half of sk.
func PublicKey(sk *qfs.DilithiumSecretKey) *qfs.DilithiumPublicKey {
	return &qfs.DilithiumPublicKey{Seed: sk.Seed, A: sk.A, T: sk.T, Params: sk.Params}
}

// SerializeSignature encodes sig as [cp][z].
func SerializeSignature(sig *qfs.Signature) []byte {
	buf := ring.AppendBlob(nil, sig.CP)
	return ring.AppendVector(buf, sig.Z)
}

// DeserializeSignature decodes a signature written by SerializeSignature.
// Shape and bounds are checked against the key by Verify.
func DeserializeSignature(data []byte) (*qfs.Signature, error) {
	cp, offset, err := ring.ReadBlob(data, 0)
	if err != nil {
		return nil, err
	}
	if len(cp) != ChallengeSeedLength {
		return nil, fmt.Errorf("%w: cp must be %d bytes", qfs.ErrEncoding, ChallengeSeedLength)
	}
	z, offset, err := ring.ReadVector(data, offset)
	if err != nil {
		return nil, err
	}
	if err := checkTrailing(data, offset); err != nil {
		return nil, err
	}
	return &qfs.Signature{Z: z, CP: cp}, nil
}

func readParams(data []byte) (qfs.DilithiumParams, int, error) {
	level, offset, err := ring.ReadBlob(data, 0)
	if err != nil {
		return qfs.DilithiumParams{}, offset, err
	}
	params, err := core.GetDilithiumParams(qfs.SecurityLevel(level))
	if err != nil {
		return qfs.DilithiumParams{}, offset, fmt.Errorf("%w: %w", qfs.ErrEncoding, err)
	}
	return params, offset, nil
}

func readSeed(data []byte, offset int) ([]byte, int, error) {
	seed, offset, err := ring.ReadBlob(data, offset)
	if err != nil {
		return nil, offset, err
	}
	if len(seed) != core.SeedLength {
		return nil, offset, fmt.Errorf("%w: matrix seed must be %d bytes", qfs.ErrEncoding, core.SeedLength)
	}
	return seed, offset, nil
}

func checkVector(v qfs.PolyVector, size, n int, lo, hi int64) error {
	if err := ring.CheckShape(v, size, n); err != nil {
		return fmt.Errorf("%w: %w", qfs.ErrEncoding, err)
	}
	return ring.CheckRange(v, lo, hi)
}

func checkTrailing(data []byte, offset int) error {
	if offset != len(data) {
		return fmt.Errorf("%w: %d trailing bytes", qfs.ErrEncoding, len(data)-offset)
	}
	return nil
}
