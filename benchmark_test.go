package qfileshare_test

import (
	"bytes"
	"testing"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/kem"
	"github.com/talari30/Q-file-share/payload"
	"github.com/talari30/Q-file-share/sign"
)

func benchmarkKEMRoundTrip(b *testing.B, level qfs.SecurityLevel) {
	kp, err := kem.GenerateKeyPair(nil, level)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := kem.Encrypt(nil, kp.PublicKey)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := kem.Decrypt(kp.SecretKey, &res.Ciphertext); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkKEM_RoundTrip_Kyber512(b *testing.B) { benchmarkKEMRoundTrip(b, qfs.Kyber512) }
func BenchmarkKEM_RoundTrip_Kyber768(b *testing.B) { benchmarkKEMRoundTrip(b, qfs.Kyber768) }

func benchmarkSignRoundTrip(b *testing.B, level qfs.SecurityLevel) {
	kp, err := sign.GenerateKeyPair(nil, level)
	if err != nil {
		b.Fatal(err)
	}
	msg := []byte("benchmark message")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sig, err := sign.Sign(nil, kp.SecretKey, msg, nil)
		if err != nil {
			b.Fatal(err)
		}
		if !sign.Verify(kp.PublicKey, msg, sig) {
			b.Fatal("verification failed")
		}
	}
}

func BenchmarkSign_RoundTrip_Dilithium3(b *testing.B) { benchmarkSignRoundTrip(b, qfs.Dilithium3) }
func BenchmarkSign_RoundTrip_Dilithium5(b *testing.B) { benchmarkSignRoundTrip(b, qfs.Dilithium5) }

func BenchmarkSealFile_1MiB(b *testing.B) {
	kp, err := kem.GenerateKeyPair(nil, qfs.Kyber512)
	if err != nil {
		b.Fatal(err)
	}
	data := bytes.Repeat([]byte{0x5a}, 1<<20)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := payload.SealFile(nil, kp.PublicKey, data); err != nil {
			b.Fatal(err)
		}
	}
}
