package kem

import (
	"fmt"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/core"
	"github.com/talari30/Q-file-share/ring"
)

// SerializePublicKey encodes pk as [level][seed][t].
func SerializePublicKey(pk *qfs.KyberPublicKey) []byte {
	buf := ring.AppendBlob(nil, []byte(pk.Params.Level))
	buf = ring.AppendBlob(buf, pk.Seed)
	return ring.AppendVector(buf, pk.T)
}

// DeserializePublicKey decodes a public key written by SerializePublicKey.
func DeserializePublicKey(data []byte) (*qfs.KyberPublicKey, error) {
	params, offset, err := readParams(data)
	if err != nil {
		return nil, err
	}
	seed, offset, err := ring.ReadBlob(data, offset)
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

	pk := qfs.NewKyberPublicKey(params, seed, t)
	if err := ValidatePublicKey(pk); err != nil {
		return nil, fmt.Errorf("%w: %w", qfs.ErrEncoding, err)
	}
	return pk, nil
}

// SerializeSecretKey encodes sk as [level][s].
func SerializeSecretKey(sk *qfs.KyberSecretKey) []byte {
	buf := ring.AppendBlob(nil, []byte(sk.Params.Level))
	return ring.AppendVector(buf, sk.S)
}

// DeserializeSecretKey decodes a secret key written by SerializeSecretKey.
func DeserializeSecretKey(data []byte) (*qfs.KyberSecretKey, error) {
	params, offset, err := readParams(data)
	if err != nil {
		return nil, err
	}
	s, offset, err := ring.ReadVector(data, offset)
	if err != nil {
		return nil, err
	}
	if err := checkTrailing(data, offset); err != nil {
		return nil, err
	}

	if err := ring.CheckShape(s, params.K, params.N); err != nil {
		return nil, fmt.Errorf("%w: %w", qfs.ErrEncoding, err)
	}
	eta := int64(params.Eta)
	if err := ring.CheckRange(s, -eta, eta); err != nil {
		return nil, err
	}
	return &qfs.KyberSecretKey{S: s, Params: params}, nil
}

// SerializeCiphertext encodes ct as [u][v] without compression.
func SerializeCiphertext(ct *qfs.KyberCiphertext) []byte {
	buf := ring.AppendVector(nil, ct.U)
	return ring.AppendPoly(buf, ct.V)
}

// DeserializeCiphertext decodes a ciphertext for params. Ciphertexts do
// not carry their parameter set; the receiver takes it from its key.
func DeserializeCiphertext(params qfs.KyberParams, data []byte) (*qfs.KyberCiphertext, error) {
	u, offset, err := ring.ReadVector(data, 0)
	if err != nil {
		return nil, err
	}
	v, offset, err := ring.ReadPoly(data, offset)
	if err != nil {
		return nil, err
	}
	if err := checkTrailing(data, offset); err != nil {
		return nil, err
	}

	ct := &qfs.KyberCiphertext{U: u, V: v}
	if err := validateCiphertext(params, ct); err != nil {
		return nil, fmt.Errorf("%w: %w", qfs.ErrEncoding, err)
	}
	q := int64(params.Q)
	if err := ring.CheckRange(ct.U, 0, q-1); err != nil {
		return nil, err
	}
	if err := ring.CheckRange(qfs.PolyVector{ct.V}, 0, q-1); err != nil {
		return nil, err
	}
	return ct, nil
}

// CompressedSize returns the length of a compressed ciphertext for params.
func CompressedSize(params qfs.KyberParams) int {
	return (params.K*params.N*params.Du + params.N*params.Dv + 7) / 8
}

// CompressCiphertext packs u to Du bits and v to Dv bits per coefficient.
// Compression is lossy; the rounding error stays well inside the decoding
// margin for the named parameter sets.
func CompressCiphertext(params qfs.KyberParams, ct *qfs.KyberCiphertext) ([]byte, error) {
	if err := validateCiphertext(params, ct); err != nil {
		return nil, err
	}
	q := int64(params.Q)
	du, dv := uint(params.Du), uint(params.Dv)

	values := make([]int64, 0, (params.K+1)*params.N)
	for _, p := range ct.U {
		values = append(values, ring.CompressPoly(p, du, q)...)
	}
	out := ring.PackBits(values, du)
	return append(out, ring.PackBits(ring.CompressPoly(ct.V, dv, q), dv)...), nil
}

// DecompressCiphertext reverses CompressCiphertext up to rounding error.
func DecompressCiphertext(params qfs.KyberParams, data []byte) (*qfs.KyberCiphertext, error) {
	if err := core.ValidateKyberParams(params); err != nil {
		return nil, err
	}
	if len(data) != CompressedSize(params) {
		return nil, fmt.Errorf("%w: compressed ciphertext has %d bytes, want %d", qfs.ErrEncoding, len(data), CompressedSize(params))
	}
	q := int64(params.Q)
	du, dv := uint(params.Du), uint(params.Dv)

	uLen := (params.K*params.N*params.Du + 7) / 8
	uValues, err := ring.UnpackBits(data[:uLen], du, params.K*params.N)
	if err != nil {
		return nil, err
	}
	vValues, err := ring.UnpackBits(data[uLen:], dv, params.N)
	if err != nil {
		return nil, err
	}

	u := make(qfs.PolyVector, params.K)
	for i := range u {
		u[i] = ring.DecompressPoly(uValues[i*params.N:(i+1)*params.N], du, q)
	}
	return &qfs.KyberCiphertext{U: u, V: ring.DecompressPoly(vValues, dv, q)}, nil
}

func readParams(data []byte) (qfs.KyberParams, int, error) {
	level, offset, err := ring.ReadBlob(data, 0)
	if err != nil {
		return qfs.KyberParams{}, offset, err
	}
	params, err := core.GetKyberParams(qfs.SecurityLevel(level))
	if err != nil {
		return qfs.KyberParams{}, offset, fmt.Errorf("%w: %w", qfs.ErrEncoding, err)
	}
	return params, offset, nil
}

func checkTrailing(data []byte, offset int) error {
	if offset != len(data) {
		return fmt.Errorf("%w: %d trailing bytes", qfs.ErrEncoding, len(data)-offset)
	}
	return nil
}
