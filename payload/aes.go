package payload

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Seal encrypts plaintext using AES-256-GCM with aad bound to the tag.
// Returns: nonce (12 bytes) || ciphertext || tag (16 bytes)
func Seal(key, nonce, aad, plaintext []byte) ([]byte, error) {
	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, AESNonceSize+len(plaintext)+AESTagSize)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, aad), nil
}

// Open reverses Seal.
func Open(key, aad, sealed []byte) ([]byte, error) {
	if len(sealed) < AESNonceSize+AESTagSize {
		return nil, fmt.Errorf("%w: sealed data too short", ErrInvalidEnvelope)
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, sealed[:AESNonceSize], sealed[AESNonceSize:], aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
