package sample

import (
	"math/bits"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/utils"
)

// Challenge derives a polynomial with exactly tau coefficients in {-1, 1}
// and the rest zero. The first 8 bytes of SHAKE256(seed) are sign bits;
// positions come from a Fisher-Yates pass over the last tau slots, with
// index bytes masked to the bit length of n-1 and rejected when above i.
//
// tau is clamped to [0, min(n, 64)].
func Challenge(seed []byte, n, tau int) qfs.Polynomial {
	tau = max(0, min(tau, n, 64))
	c := make(qfs.Polynomial, n)
	if tau == 0 {
		return c
	}

	h := utils.NewShake256(seed)
	var buf [shake256Rate]byte
	_, _ = h.Read(buf[:])

	var signs uint64
	for i := 0; i < 8; i++ {
		signs |= uint64(buf[i]) << (8 * i)
	}
	offset := 8
	mask := 1<<bits.Len(uint(n-1)) - 1

	for i := n - tau; i < n; i++ {
		var j int
		for {
			if offset >= len(buf) {
				_, _ = h.Read(buf[:])
				offset = 0
			}
			j = int(buf[offset]) & mask
			offset++
			if j <= i {
				break
			}
		}

		c[i] = c[j]
		c[j] = 1 - 2*int64(signs&1)
		signs >>= 1
	}
	return c
}
