package ring

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	lring "github.com/tuneinsight/lattigo/v4/ring"
)

// TestMul_MatchesLattigoNTT checks Karatsuba against an NTT-based negacyclic
// convolution over the Dilithium prime, which is NTT-friendly for N=256.
func TestMul_MatchesLattigoNTT(t *testing.T) {
	const n, q = 256, 8380417

	r, err := lring.NewRing(n, []uint64{q})
	if err != nil {
		t.Fatalf("ring.NewRing: %v", err)
	}

	src := rand.New(rand.NewSource(11))
	for trial := 0; trial < 4; trial++ {
		a := randomPoly(src, n, q)
		b := randomPoly(src, n, q)

		pa, pb := r.NewPoly(), r.NewPoly()
		for i := 0; i < n; i++ {
			pa.Coeffs[0][i] = uint64(a[i])
			pb.Coeffs[0][i] = uint64(b[i])
		}
		r.MForm(pa, pa)
		r.MForm(pb, pb)
		r.NTT(pa, pa)
		r.NTT(pb, pb)
		pc := r.NewPoly()
		r.MulCoeffsMontgomery(pa, pb, pc)
		r.InvNTT(pc, pc)
		r.InvMForm(pc, pc)

		want := make([]int64, n)
		for i := 0; i < n; i++ {
			want[i] = int64(pc.Coeffs[0][i])
		}
		got := ModQ(Mul(a, b), q)
		if diff := cmp.Diff(want, []int64(got)); diff != "" {
			t.Fatalf("trial %d: Karatsuba differs from NTT (-ntt +karatsuba):\n%s", trial, diff)
		}
	}
}
