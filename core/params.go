// Package core provides parameter sets and validation for Q-file-share.
package core

import (
	"fmt"

	qfs "github.com/talari30/Q-file-share"
)

// SeedLength is the length of every key-generation and matrix seed.
const SeedLength = 32

// dilithiumQ is the Dilithium prime 2^23 - 2^13 + 1.
const dilithiumQ = 8380417

// Kyber512Params is the k=2 encryption parameter set.
var Kyber512Params = qfs.KyberParams{
	Level: qfs.Kyber512,
	N:     256,
	Q:     3329,
	K:     2,
	Eta:   2,
	Du:    10,
	Dv:    4,
}

// Kyber768Params is the k=3 encryption parameter set.
var Kyber768Params = qfs.KyberParams{
	Level: qfs.Kyber768,
	N:     256,
	Q:     3329,
	K:     3,
	Eta:   2,
	Du:    10,
	Dv:    4,
}

// KyberToyParams is a small encryption parameter set for tests.
var KyberToyParams = qfs.KyberParams{
	Level: qfs.KyberToy,
	N:     16,
	Q:     3329,
	K:     2,
	Eta:   1,
	Du:    10,
	Dv:    4,
}

// Dilithium3Params is the 6x5 signature parameter set.
var Dilithium3Params = qfs.DilithiumParams{
	Level:  qfs.Dilithium3,
	N:      256,
	Q:      dilithiumQ,
	K:      6,
	L:      5,
	Eta:    4,
	Tau:    49,
	Beta:   196,
	Gamma1: 1 << 19,
	Gamma2: (dilithiumQ - 1) / 32,
}

// Dilithium5Params is the 8x7 signature parameter set.
var Dilithium5Params = qfs.DilithiumParams{
	Level:  qfs.Dilithium5,
	N:      256,
	Q:      dilithiumQ,
	K:      8,
	L:      7,
	Eta:    2,
	Tau:    60,
	Beta:   120,
	Gamma1: 1 << 19,
	Gamma2: (dilithiumQ - 1) / 32,
}

// DilithiumToyParams is the N=8 signature parameter set used in tests.
var DilithiumToyParams = qfs.DilithiumParams{
	Level:  qfs.DilithiumToy,
	N:      8,
	Q:      3329,
	K:      2,
	L:      2,
	Eta:    1,
	Tau:    2,
	Beta:   2,
	Gamma1: 256,
	Gamma2: 208,
}

// GetKyberParams returns the encryption parameter set for the given level.
func GetKyberParams(level qfs.SecurityLevel) (qfs.KyberParams, error) {
	switch level {
	case qfs.Kyber512:
		return Kyber512Params, nil
	case qfs.Kyber768:
		return Kyber768Params, nil
	case qfs.KyberToy:
		return KyberToyParams, nil
	default:
		return qfs.KyberParams{}, fmt.Errorf("%w: %s", qfs.ErrUnknownLevel, level)
	}
}

// GetDilithiumParams returns the signature parameter set for the given level.
func GetDilithiumParams(level qfs.SecurityLevel) (qfs.DilithiumParams, error) {
	switch level {
	case qfs.Dilithium3:
		return Dilithium3Params, nil
	case qfs.Dilithium5:
		return Dilithium5Params, nil
	case qfs.DilithiumToy:
		return DilithiumToyParams, nil
	default:
		return qfs.DilithiumParams{}, fmt.Errorf("%w: %s", qfs.ErrUnknownLevel, level)
	}
}

// ValidateKyberParams validates the encryption parameter set.
func ValidateKyberParams(params qfs.KyberParams) error {
	if params.N <= 0 || params.K <= 0 {
		return invalid("dimensions must be positive")
	}
	if params.N%8 != 0 {
		return invalid("N must be a multiple of 8")
	}
	if !isPrime(params.Q) {
		return invalid("modulus must be prime")
	}
	// Matrix expansion packs two 12-bit candidates into three bytes.
	if params.Q >= 1<<12 {
		return invalid("modulus must fit in 12 bits")
	}
	if params.Eta <= 0 || params.Eta > 8 {
		return invalid("eta must be in [1, 8]")
	}
	if params.Du <= 0 || params.Du > 12 || params.Dv <= 0 || params.Dv > 12 {
		return invalid("compression bits must be in [1, 12]")
	}
	return nil
}

// ValidateDilithiumParams validates the signature parameter set.
func ValidateDilithiumParams(params qfs.DilithiumParams) error {
	if params.N <= 0 || params.K <= 0 || params.L <= 0 {
		return invalid("dimensions must be positive")
	}
	if params.N%8 != 0 {
		return invalid("N must be a multiple of 8")
	}
	if !isPrime(params.Q) {
		return invalid("modulus must be prime")
	}
	if params.Q >= 1<<24 {
		return invalid("modulus must fit in 24 bits")
	}
	if params.Eta <= 0 {
		return invalid("eta must be positive")
	}
	// The challenge takes its sign bits from a single 64-bit word.
	if params.Tau <= 0 || params.Tau > params.N || params.Tau > 64 {
		return invalid("tau must be in [1, min(N, 64)]")
	}
	if params.Beta < params.Tau*params.Eta {
		return invalid("beta must be at least tau*eta")
	}
	if params.Gamma2 <= 0 || ((params.Q-1)/2)%params.Gamma2 != 0 {
		return invalid("gamma2 must divide (q-1)/2")
	}
	// High bits are packed two per byte.
	if (params.Q-1)/(2*params.Gamma2) > 16 {
		return invalid("(q-1)/(2*gamma2) must be at most 16")
	}
	if params.Gamma1 <= params.Beta || params.Gamma2 <= params.Beta {
		return invalid("gamma1 and gamma2 must exceed beta")
	}
	if 2*params.Gamma1 >= params.Q {
		return invalid("gamma1 must be below q/2")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", qfs.ErrInvalidParams, msg)
}

// isPrime checks if a number is prime using a simple trial division.
// This is used for validating parameters, not for generating large primes.
func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
