package payload

const (
	// HKDFContext is the info string used in HKDF key derivation
	// for domain separation.
	HKDFContext = "q-file-share:payload:v1"

	// KeyBits is the number of decrypted bits consumed as key material.
	KeyBits = 256

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16
	// SaltSize is the size of the per-envelope HKDF salt.
	SaltSize = 32

	// SegmentSize is how many leading bytes of a file get signed.
	SegmentSize = 1024
)
