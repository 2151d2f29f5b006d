package qfileshare

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when vector or matrix operands have
	// incompatible lengths.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEncoding is returned for malformed serialized input.
	ErrEncoding = errors.New("encoding error")

	// ErrAbortExceeded is returned when signing rejects every candidate
	// within the attempt budget.
	ErrAbortExceeded = errors.New("signing aborted: attempt limit exceeded")

	// ErrInvalidSeed is returned for seeds of the wrong length or with
	// obviously low entropy.
	ErrInvalidSeed = errors.New("invalid seed")

	// ErrInvalidParams is returned when a parameter set fails validation.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrUnknownLevel is returned for an unrecognized security level.
	ErrUnknownLevel = errors.New("unknown security level")

	// ErrInvalidKeyBits is returned when a decrypted bit vector cannot be
	// turned into symmetric key material.
	ErrInvalidKeyBits = fmt.Errorf("%w: invalid key bits", ErrEncoding)
)
