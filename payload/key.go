package payload

import (
	"crypto/sha512"
	"fmt"
	"io"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/utils"
	"golang.org/x/crypto/hkdf"
)

// KeyFromBits packs the first KeyBits entries of a decrypted bit vector
// into 32 bytes, most significant bit first.
func KeyFromBits(bits []uint8) ([]byte, error) {
	if len(bits) < KeyBits {
		return nil, fmt.Errorf("%w: got %d bits, want at least %d", qfs.ErrInvalidKeyBits, len(bits), KeyBits)
	}
	key, err := utils.BitsToBytes(bits[:KeyBits])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qfs.ErrInvalidKeyBits, err)
	}
	return key, nil
}

// DeriveKey derives a key using HKDF-SHA-512.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, sha512.Size)
	}

	reader := hkdf.New(sha512.New, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}

// fileKey derives the AES key for an envelope from the lattice bits.
func fileKey(bits []uint8, salt []byte, level qfs.SecurityLevel) ([]byte, error) {
	raw, err := KeyFromBits(bits)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(raw)
	return DeriveKey(raw, salt, []byte(HKDFContext+":"+string(level)), AESKeySize)
}
