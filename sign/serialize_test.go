package sign

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	qfs "github.com/talari30/Q-file-share"
)

func TestSerialization_RoundTrip(t *testing.T) {
	kp := toyKeyPair(t)

	pk, err := DeserializePublicKey(SerializePublicKey(kp.PublicKey))
	if err != nil {
		t.Fatalf("DeserializePublicKey failed: %v", err)
	}
	if diff := cmp.Diff(kp.PublicKey, pk); diff != "" {
		t.Errorf("public key mismatch (-want +got):\n%s", diff)
	}

	sk, err := DeserializeSecretKey(SerializeSecretKey(kp.SecretKey))
	if err != nil {
		t.Fatalf("DeserializeSecretKey failed: %v", err)
	}
	if diff := cmp.Diff(kp.SecretKey, sk); diff != "" {
		t.Errorf("secret key mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(kp.PublicKey, PublicKey(sk)); diff != "" {
		t.Errorf("PublicKey(sk) mismatch (-want +got):\n%s", diff)
	}

	msg := []byte{1, 2, 3}
	sig, err := Sign(testRNG("serialize"), sk, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DeserializeSignature(SerializeSignature(sig))
	if err != nil {
		t.Fatalf("DeserializeSignature failed: %v", err)
	}
	if diff := cmp.Diff(sig, decoded); diff != "" {
		t.Errorf("signature mismatch (-want +got):\n%s", diff)
	}
	if !Verify(pk, msg, decoded) {
		t.Error("decoded signature rejected by decoded key")
	}
}

func TestDeserialize_Truncated(t *testing.T) {
	kp := toyKeyPair(t)
	sig, err := Sign(testRNG("truncated"), kp.SecretKey, []byte{1}, nil)
	if err != nil {
		t.Fatal(err)
	}

	inputs := map[string][]byte{
		"public key": SerializePublicKey(kp.PublicKey),
		"secret key": SerializeSecretKey(kp.SecretKey),
		"signature":  SerializeSignature(sig),
	}
	decoders := map[string]func([]byte) error{
		"public key": func(b []byte) error { _, err := DeserializePublicKey(b); return err },
		"secret key": func(b []byte) error { _, err := DeserializeSecretKey(b); return err },
		"signature":  func(b []byte) error { _, err := DeserializeSignature(b); return err },
	}

	for name, data := range inputs {
		decode := decoders[name]
		for _, cut := range []int{0, 2, 4, 20, len(data) / 2, len(data) - 1} {
			if err := decode(data[:cut]); !errors.Is(err, qfs.ErrEncoding) {
				t.Errorf("%s cut at %d: err = %v, want ErrEncoding", name, cut, err)
			}
		}
		if err := decode(append(append([]byte(nil), data...), 0)); !errors.Is(err, qfs.ErrEncoding) {
			t.Errorf("%s with trailing byte: err = %v", name, err)
		}
	}
}

func TestDeserialize_Invalid(t *testing.T) {
	kp := toyKeyPair(t)

	wide := *kp.SecretKey
	wide.S1 = qfs.PolyVector{append(qfs.Polynomial(nil), kp.SecretKey.S1[0]...), kp.SecretKey.S1[1]}
	wide.S1[0][0] = 2
	if _, err := DeserializeSecretKey(SerializeSecretKey(&wide)); !errors.Is(err, qfs.ErrEncoding) {
		t.Errorf("secret out of range: err = %v", err)
	}

	shortSeed := *kp.PublicKey
	shortSeed.Seed = shortSeed.Seed[:16]
	if _, err := DeserializePublicKey(SerializePublicKey(&shortSeed)); !errors.Is(err, qfs.ErrEncoding) {
		t.Errorf("short seed: err = %v", err)
	}

	wrongLevel := *kp.PublicKey
	wrongLevel.Params.Level = qfs.Dilithium3
	_, err := DeserializePublicKey(SerializePublicKey(&wrongLevel))
	if !errors.Is(err, qfs.ErrEncoding) || !errors.Is(err, qfs.ErrDimensionMismatch) {
		t.Errorf("mislabeled key: err = %v", err)
	}

	if _, err := DeserializeSignature(SerializeSignature(&qfs.Signature{CP: make([]byte, 31)})); !errors.Is(err, qfs.ErrEncoding) {
		t.Errorf("short cp: err = %v", err)
	}
}
