package ring

import (
	"testing"

	qfs "github.com/talari30/Q-file-share"
)

func TestDecompose_Reconstructs(t *testing.T) {
	tests := []struct {
		name     string
		q, alpha int64
	}{
		{"dilithium", 8380417, 2 * 261888},
		{"toy", 3329, 2 * 208},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxHigh := (tt.q - 1) / tt.alpha
			step := tt.q/997 + 1
			for r := int64(0); r < tt.q; r += step {
				r1, r0 := Decompose(r, tt.alpha, tt.q)
				if r1 < 0 || r1 >= maxHigh {
					t.Fatalf("Decompose(%d): r1 = %d outside [0, %d)", r, r1, maxHigh)
				}
				if r0 < -tt.alpha/2-1 || r0 > tt.alpha/2 {
					t.Fatalf("Decompose(%d): r0 = %d not centered", r, r0)
				}
				if got := ModPlus(r1*tt.alpha+r0, tt.q); got != r {
					t.Fatalf("Decompose(%d) reconstructs to %d", r, got)
				}
			}
		})
	}
}

func TestDecompose_BoundaryFold(t *testing.T) {
	const q, alpha = 3329, 416
	// r = q-1 has r0 = 0 and r - r0 = q - 1, so it folds to (0, -1).
	r1, r0 := Decompose(q-1, alpha, q)
	if r1 != 0 || r0 != -1 {
		t.Errorf("Decompose(q-1) = (%d, %d), want (0, -1)", r1, r0)
	}
	// Negative inputs are centered into [0, q) first.
	r1, r0 = Decompose(-1, alpha, q)
	if r1 != 0 || r0 != -1 {
		t.Errorf("Decompose(-1) = (%d, %d), want (0, -1)", r1, r0)
	}
	if HighBits(416, alpha, q) != 1 || LowBits(416, alpha, q) != 0 {
		t.Errorf("Decompose(416) = (%d, %d), want (1, 0)", HighBits(416, alpha, q), LowBits(416, alpha, q))
	}
}

func TestHighLowBitsVector(t *testing.T) {
	const q, alpha = 3329, 416
	v := qfs.PolyVector{{0, 416, 1000, 3328}}
	high := HighBitsVector(v, alpha, q)
	low := LowBitsVector(v, alpha, q)
	for i, c := range v[0] {
		if got := ModPlus(high[0][i]*alpha+low[0][i], q); got != c {
			t.Errorf("coefficient %d reconstructs to %d, want %d", i, got, c)
		}
	}
}
