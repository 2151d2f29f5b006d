// Package payload turns the lattice primitives into file operations.
//
// Encryption follows the Q-file-share flow: the sender encrypts a fresh
// 256-bit vector under the recipient's Kyber public key, derives an
// AES-256-GCM key from those bits with HKDF-SHA-512 and seals the file.
// Only the envelope (lattice ciphertext, salt, sealed bytes) travels.
//
// Signing covers the leading SegmentSize bytes of a file, as the original
// application did when signing uploads.
package payload
