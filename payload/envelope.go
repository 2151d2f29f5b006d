package payload

import (
	"fmt"
	"io"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/core"
	"github.com/talari30/Q-file-share/internal/log"
	"github.com/talari30/Q-file-share/kem"
	"github.com/talari30/Q-file-share/utils"
)

// Envelope is an encrypted file as it travels to the recipient.
type Envelope struct {
	Level      qfs.SecurityLevel `json:"level"`
	Ciphertext []byte            `json:"ciphertext"` // compressed lattice ciphertext
	Salt       []byte            `json:"salt"`
	Sealed     []byte            `json:"sealed"` // nonce || AES-GCM ciphertext || tag
}

// SealFile encrypts data for the holder of pk. A nil rng reads from
// crypto/rand. The key must belong to a parameter set with at least
// KeyBits coefficients.
func SealFile(rng io.Reader, pk *qfs.KyberPublicKey, data []byte) (*Envelope, error) {
	if err := kem.ValidatePublicKey(pk); err != nil {
		return nil, err
	}
	level := pk.Params.Level

	res, err := kem.Encrypt(rng, pk)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(res.Key)

	ct, err := kem.CompressCiphertext(pk.Params, &res.Ciphertext)
	if err != nil {
		return nil, err
	}
	salt, err := utils.RandomBytes(rng, SaltSize)
	if err != nil {
		return nil, err
	}
	key, err := fileKey(res.Key, salt, level)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(key)

	nonce, err := utils.RandomBytes(rng, AESNonceSize)
	if err != nil {
		return nil, err
	}
	sealed, err := Seal(key, nonce, aad(level, ct), data)
	if err != nil {
		return nil, err
	}

	log.Default().Module("payload").Debug("file sealed", "level", level, "bytes", len(data))
	return &Envelope{Level: level, Ciphertext: ct, Salt: salt, Sealed: sealed}, nil
}

// OpenFile decrypts an envelope with sk. A wrong key or any tampering
// returns ErrDecryptionFailed.
func OpenFile(sk *qfs.KyberSecretKey, env *Envelope) ([]byte, error) {
	if sk == nil {
		return nil, fmt.Errorf("%w: nil secret key", qfs.ErrEncoding)
	}
	if env == nil || len(env.Salt) != SaltSize {
		return nil, fmt.Errorf("%w: missing salt", ErrInvalidEnvelope)
	}
	params, err := core.GetKyberParams(env.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if params.Level != sk.Params.Level {
		return nil, fmt.Errorf("%w: envelope level %s, key level %s", ErrInvalidEnvelope, env.Level, sk.Params.Level)
	}

	ct, err := kem.DecompressCiphertext(params, env.Ciphertext)
	if err != nil {
		return nil, err
	}
	bits, err := kem.Decrypt(sk, ct)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(bits)

	key, err := fileKey(bits, env.Salt, env.Level)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(key)

	return Open(key, aad(env.Level, env.Ciphertext), env.Sealed)
}

// aad binds the level and lattice ciphertext to the sealed data.
func aad(level qfs.SecurityLevel, ct []byte) []byte {
	return utils.Shake256(32, []byte(level), ct)
}
