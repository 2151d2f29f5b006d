package sample

import (
	"fmt"
	"io"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/utils"
)

// CenteredBinomial draws n coefficients from the centered binomial
// distribution of order eta: each is the difference of two sums of eta
// random bits, so it lies in [-eta, eta].
func CenteredBinomial(r io.Reader, n, eta int) (qfs.Polynomial, error) {
	buf, err := utils.RandomBytes(r, (2*eta*n+7)/8)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(buf)

	bit := 0
	next := func() int64 {
		b := int64(buf[bit/8]>>(bit%8)) & 1
		bit++
		return b
	}

	p := make(qfs.Polynomial, n)
	for i := range p {
		var a, b int64
		for j := 0; j < eta; j++ {
			a += next()
		}
		for j := 0; j < eta; j++ {
			b += next()
		}
		p[i] = a - b
	}
	return p, nil
}

// NoiseVector draws size centered binomial polynomials.
func NoiseVector(r io.Reader, size, n, eta int) (qfs.PolyVector, error) {
	v := make(qfs.PolyVector, size)
	for i := range v {
		p, err := CenteredBinomial(r, n, eta)
		if err != nil {
			return nil, fmt.Errorf("noise polynomial %d: %w", i, err)
		}
		v[i] = p
	}
	return v, nil
}

// BoundedUniform draws n coefficients uniformly from [-bound, bound].
func BoundedUniform(r io.Reader, n int, bound int64) (qfs.Polynomial, error) {
	if bound < 0 {
		return nil, fmt.Errorf("%w: negative bound %d", qfs.ErrInvalidParams, bound)
	}
	p := make(qfs.Polynomial, n)
	for i := range p {
		v, err := utils.RandomIntFrom(r, int(2*bound+1))
		if err != nil {
			return nil, err
		}
		p[i] = int64(v) - bound
	}
	return p, nil
}

// BoundedVector draws size polynomials with BoundedUniform.
func BoundedVector(r io.Reader, size, n int, bound int64) (qfs.PolyVector, error) {
	v := make(qfs.PolyVector, size)
	for i := range v {
		p, err := BoundedUniform(r, n, bound)
		if err != nil {
			return nil, fmt.Errorf("bounded polynomial %d: %w", i, err)
		}
		v[i] = p
	}
	return v, nil
}
