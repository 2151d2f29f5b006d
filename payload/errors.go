package payload

import (
	"errors"
	"fmt"

	qfs "github.com/talari30/Q-file-share"
)

var (
	// ErrInvalidKeySize is returned when the AES key size is invalid.
	ErrInvalidKeySize = fmt.Errorf("%w: invalid key size", qfs.ErrEncoding)

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = fmt.Errorf("%w: invalid nonce size", qfs.ErrEncoding)

	// ErrInvalidEnvelope is returned when an envelope is structurally
	// malformed (missing fields, short sealed data, unknown level).
	ErrInvalidEnvelope = fmt.Errorf("%w: invalid envelope", qfs.ErrEncoding)

	// ErrDecryptionFailed is returned when authenticated decryption fails,
	// which includes decrypting with the wrong key.
	ErrDecryptionFailed = errors.New("decryption failed")
)
