package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type errorReader struct{}

func (errorReader) Read(p []byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

func TestRandomIntFrom(t *testing.T) {
	if _, err := RandomIntFrom(nil, 0); err == nil {
		t.Error("RandomIntFrom(0) should fail")
	}
	if v, err := RandomIntFrom(errorReader{}, 1); err != nil || v != 0 {
		t.Errorf("RandomIntFrom(1) = %d, %v; want 0 without reading", v, err)
	}

	// 9 needs four bits, so 7 of every 16 draws are rejected.
	const n = 9
	counts := make([]int, n)
	stream := NewShake256([]byte("uniform"))
	for i := 0; i < 9000; i++ {
		v, err := RandomIntFrom(stream, n)
		if err != nil {
			t.Fatalf("RandomIntFrom failed: %v", err)
		}
		if v < 0 || v >= n {
			t.Fatalf("RandomIntFrom returned %d, outside [0, %d)", v, n)
		}
		counts[v]++
	}
	for v, c := range counts {
		if c < 800 || c > 1200 {
			t.Errorf("value %d drawn %d times out of 9000", v, c)
		}
	}
}

func TestRandomIntFrom_Deterministic(t *testing.T) {
	a, err := RandomIntFrom(NewShake256([]byte("stream")), 1<<20-1)
	if err != nil {
		t.Fatalf("RandomIntFrom failed: %v", err)
	}
	b, err := RandomIntFrom(NewShake256([]byte("stream")), 1<<20-1)
	if err != nil {
		t.Fatalf("RandomIntFrom failed: %v", err)
	}
	if a != b {
		t.Errorf("RandomIntFrom not deterministic: %d != %d", a, b)
	}
}

func TestRandomIntFrom_ReaderError(t *testing.T) {
	if _, err := RandomIntFrom(errorReader{}, 10); err == nil {
		t.Error("expected error from failing reader")
	}
}

func TestRandomBytes(t *testing.T) {
	buf, err := RandomBytes(nil, 32)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != 32 {
		t.Errorf("expected 32 bytes, got %d", len(buf))
	}

	if _, err := RandomBytes(bytes.NewReader([]byte{1, 2, 3}), 32); err == nil {
		t.Error("expected error for short reader")
	}
}

func TestRandomBytes_NilUsesRandReader(t *testing.T) {
	old := RandReader
	RandReader = errorReader{}
	defer func() { RandReader = old }()

	if _, err := RandomBytes(nil, 32); err == nil {
		t.Error("expected error from rand failure")
	}
}

func TestValidateSeedEntropy(t *testing.T) {
	ramp := func(start, step int) []byte {
		b := make([]byte, 32)
		for i := range b {
			b[i] = byte(start + step*i)
		}
		return b
	}
	good, err := RandomBytes(nil, 32)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		seed []byte
		want string // substring of the error, empty for accept
	}{
		{"random", good, ""},
		{"short", good[:16], "at least 32 bytes"},
		{"zeros", make([]byte, 32), "identical"},
		{"ascending", ramp(0, 1), "sequential"},
		{"descending with wraparound", ramp(5, -1), "sequential"},
		{"low diversity", bytes.Repeat([]byte{1, 2, 3, 4}, 8), "diversity"},
		{"eight values", bytes.Repeat([]byte{9, 1, 7, 3, 5, 2, 8, 4}, 4), ""},
	}
	for _, tt := range tests {
		err := ValidateSeedEntropy(tt.seed)
		switch {
		case tt.want == "" && err != nil:
			t.Errorf("%s: unexpected error %v", tt.name, err)
		case tt.want != "" && (err == nil || !strings.Contains(err.Error(), tt.want)):
			t.Errorf("%s: error = %v, want it to mention %q", tt.name, err, tt.want)
		}
	}
}

func TestConstantTimeEqual(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	c := []byte{1, 2, 4}

	if !ConstantTimeEqual(a, b) {
		t.Error("ConstantTimeEqual failed for equal slices")
	}
	if ConstantTimeEqual(a, c) {
		t.Error("ConstantTimeEqual passed for unequal slices")
	}
	if ConstantTimeEqual(a, a[:2]) {
		t.Error("ConstantTimeEqual passed for different lengths")
	}
	if !ConstantTimeEqual(nil, []byte{}) {
		t.Error("ConstantTimeEqual failed for empty slices")
	}
}

func TestZeroize(t *testing.T) {
	b := []byte{1, 2, 3}
	Zeroize(b)
	if !bytes.Equal(b, []byte{0, 0, 0}) {
		t.Errorf("Zeroize left %v", b)
	}

	s := []int64{-4, 5}
	ZeroizeInt64(s)
	if s[0] != 0 || s[1] != 0 {
		t.Errorf("ZeroizeInt64 left %v", s)
	}
}

func TestBitsRoundTrip(t *testing.T) {
	data := []byte{0x80, 0x01, 0xA5}
	bits := BytesToBits(data)
	if len(bits) != 24 {
		t.Fatalf("BytesToBits length = %d, want 24", len(bits))
	}
	// Most significant bit comes first.
	if bits[0] != 1 || bits[7] != 0 || bits[15] != 1 {
		t.Errorf("unexpected bit order: %v", bits[:16])
	}

	back, err := BitsToBytes(bits)
	if err != nil {
		t.Fatalf("BitsToBytes failed: %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Errorf("round trip = %x, want %x", back, data)
	}

	if _, err := BitsToBytes(bits[:7]); err == nil {
		t.Error("BitsToBytes should reject partial bytes")
	}
	bits[3] = 2
	if _, err := BitsToBytes(bits); err == nil {
		t.Error("BitsToBytes should reject non-binary entries")
	}
}
