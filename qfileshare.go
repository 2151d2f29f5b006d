package qfileshare

// Version of the Q-file-share lattice library.
const Version = "0.4.0"

// API summary:
//
// Encryption (Kyber family, CPA):
//   - kem.GenerateKeyPair(rng, level) - Generate a key pair
//   - kem.Encrypt(rng, pk) - Encrypt a fresh random bit vector
//   - kem.Decrypt(sk, ct) - Recover the bit vector
//   - kem.CompressCiphertext(params, ct) - Lossy ciphertext packing
//
// Digital Signatures (Dilithium family, Fiat-Shamir with aborts):
//   - sign.GenerateKeyPair(rng, level) - Generate a signature key pair
//   - sign.Sign(rng, sk, message, opts) - Sign with a bounded retry loop
//   - sign.Verify(pk, message, signature) - Total verification predicate
//
// File payloads:
//   - payload.SealFile(rng, pk, data) - Encrypt a file under a fresh key
//   - payload.SignFile(rng, sk, r, opts) - Sign the leading file segment
//
// Parameters:
//   - core.GetKyberParams(level), core.GetDilithiumParams(level)
