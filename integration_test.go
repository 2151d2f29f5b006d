package qfileshare_test

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/core"
	"github.com/talari30/Q-file-share/kem"
	"github.com/talari30/Q-file-share/payload"
	"github.com/talari30/Q-file-share/sign"
)

// TestFileExchange runs the whole sender/recipient flow through the wire
// formats: the sender signs and seals a file, the recipient decodes the
// keys and signature from bytes, opens the file and checks the signature.
func TestFileExchange(t *testing.T) {
	recipient, err := kem.GenerateKeyPair(nil, qfs.Kyber768)
	if err != nil {
		t.Fatalf("kem.GenerateKeyPair failed: %v", err)
	}
	sender, err := sign.GenerateKeyPair(nil, qfs.Dilithium3)
	if err != nil {
		t.Fatalf("sign.GenerateKeyPair failed: %v", err)
	}

	// Keys travel as bytes.
	recipientPK, err := kem.DeserializePublicKey(kem.SerializePublicKey(recipient.PublicKey))
	if err != nil {
		t.Fatalf("DeserializePublicKey failed: %v", err)
	}
	senderPK, err := sign.DeserializePublicKey(sign.SerializePublicKey(sender.PublicKey))
	if err != nil {
		t.Fatalf("DeserializePublicKey failed: %v", err)
	}

	file := bytes.Repeat([]byte("post-quantum file share "), 100)

	sig, err := payload.SignFile(nil, sender.SecretKey, bytes.NewReader(file), nil)
	if err != nil {
		t.Fatalf("SignFile failed: %v", err)
	}
	env, err := payload.SealFile(nil, recipientPK, file)
	if err != nil {
		t.Fatalf("SealFile failed: %v", err)
	}
	sigBytes := sign.SerializeSignature(sig)

	// Recipient side.
	opened, err := payload.OpenFile(recipient.SecretKey, env)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if !bytes.Equal(opened, file) {
		t.Fatal("opened file differs from original")
	}
	sig2, err := sign.DeserializeSignature(sigBytes)
	if err != nil {
		t.Fatalf("DeserializeSignature failed: %v", err)
	}
	valid, err := payload.VerifyFile(senderPK, bytes.NewReader(opened), sig2)
	if err != nil {
		t.Fatalf("VerifyFile failed: %v", err)
	}
	if !valid {
		t.Error("signature over opened file did not verify")
	}
}

// TestCrossLevelRejection checks that keys and ciphertexts from one
// parameter set are refused by another.
func TestCrossLevelRejection(t *testing.T) {
	k512, err := kem.GenerateKeyPair(nil, qfs.Kyber512)
	if err != nil {
		t.Fatal(err)
	}
	k768, err := kem.GenerateKeyPair(nil, qfs.Kyber768)
	if err != nil {
		t.Fatal(err)
	}

	res, err := kem.Encrypt(nil, k512.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := kem.Decrypt(k768.SecretKey, &res.Ciphertext); !errors.Is(err, qfs.ErrDimensionMismatch) {
		t.Errorf("Decrypt with other level: got %v, want ErrDimensionMismatch", err)
	}

	env, err := payload.SealFile(nil, k512.PublicKey, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := payload.OpenFile(k768.SecretKey, env); !errors.Is(err, payload.ErrInvalidEnvelope) {
		t.Errorf("OpenFile with other level: got %v, want ErrInvalidEnvelope", err)
	}

	s3, err := sign.GenerateKeyPair(nil, qfs.Dilithium3)
	if err != nil {
		t.Fatal(err)
	}
	s5, err := sign.GenerateKeyPair(nil, qfs.Dilithium5)
	if err != nil {
		t.Fatal(err)
	}
	sig, err := sign.Sign(nil, s3.SecretKey, []byte("m"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if sign.Verify(s5.PublicKey, []byte("m"), sig) {
		t.Error("Dilithium3 signature verified under a Dilithium5 key")
	}
}

// TestParameterSets checks every named parameter set through the public
// lookup functions.
func TestParameterSets(t *testing.T) {
	for _, level := range []qfs.SecurityLevel{qfs.Kyber512, qfs.Kyber768, qfs.KyberToy} {
		p, err := core.GetKyberParams(level)
		if err != nil {
			t.Fatalf("GetKyberParams(%s) failed: %v", level, err)
		}
		if err := core.ValidateKyberParams(p); err != nil {
			t.Errorf("%s invalid: %v", level, err)
		}
	}
	for _, level := range []qfs.SecurityLevel{qfs.Dilithium3, qfs.Dilithium5, qfs.DilithiumToy} {
		p, err := core.GetDilithiumParams(level)
		if err != nil {
			t.Fatalf("GetDilithiumParams(%s) failed: %v", level, err)
		}
		if err := core.ValidateDilithiumParams(p); err != nil {
			t.Errorf("%s invalid: %v", level, err)
		}
	}
	if _, err := core.GetKyberParams(qfs.Dilithium3); !errors.Is(err, qfs.ErrUnknownLevel) {
		t.Errorf("GetKyberParams(Dilithium3): got %v, want ErrUnknownLevel", err)
	}
}

func TestErrorHierarchy(t *testing.T) {
	if !errors.Is(qfs.ErrInvalidKeyBits, qfs.ErrEncoding) {
		t.Error("ErrInvalidKeyBits should wrap ErrEncoding")
	}
	if !errors.Is(payload.ErrInvalidEnvelope, qfs.ErrEncoding) {
		t.Error("ErrInvalidEnvelope should wrap ErrEncoding")
	}
	if errors.Is(payload.ErrDecryptionFailed, qfs.ErrEncoding) {
		t.Error("ErrDecryptionFailed should not be an encoding error")
	}
}

func TestLazyMatrix(t *testing.T) {
	var calls atomic.Int32
	derive := func() qfs.Matrix {
		calls.Add(1)
		return qfs.Matrix{{qfs.Polynomial{1, 2}}}
	}

	var lm qfs.LazyMatrix
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m := lm.Get(derive); m[0][0][1] != 2 {
				t.Errorf("unexpected matrix %v", m)
			}
		}()
	}
	wg.Wait()
	if got := calls.Load(); got != 1 {
		t.Errorf("derive called %d times, want 1", got)
	}

	var nilCache *qfs.LazyMatrix
	nilCache.Get(derive)
	nilCache.Get(derive)
	if got := calls.Load(); got != 3 {
		t.Errorf("nil cache: derive called %d times in total, want 3", got)
	}
}
