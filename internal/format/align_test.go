package format

import "testing"

func TestAlign8(t *testing.T) {
	cases := map[int]int{0: 0, 1: 8, 7: 8, 8: 8, 9: 16, 16: 16, 4095: 4096}
	for in, want := range cases {
		if got := Align8(in); got != want {
			t.Fatalf("Align8(%d)=%d want %d", in, got, want)
		}
	}
}

func TestIsAligned(t *testing.T) {
	if !IsAligned(0) || !IsAligned(16) {
		t.Fatalf("expected aligned values to report true")
	}
	if IsAligned(4) || IsAligned(12) {
		t.Fatalf("expected misaligned values to report false")
	}
}

func TestAdjustedSize(t *testing.T) {
	cases := []struct{ payload, want int }{
		{0, 16},
		{1, 16},
		{8, 16},
		{9, 24},
		{16, 24},
		{100, 112},
		{4088, 4096},
	}
	for _, tc := range cases {
		if got := AdjustedSize(tc.payload); got != tc.want {
			t.Fatalf("AdjustedSize(%d)=%d want %d", tc.payload, got, tc.want)
		}
	}
}
