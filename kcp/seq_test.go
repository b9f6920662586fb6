package kcp

import "testing"

func TestSeqLess(t *testing.T) {
	cases := []struct {
		a, b     uint32
		expected bool
	}{
		{5, 10, true},
		{10, 5, false},
		{0, 0, false},
		{4294967295, 0, true},  // -1 is less than 0
		{0, 4294967295, false}, // 0 is greater than -1
		{2147483646, 2147483647, true},
	}
	for _, tc := range cases {
		if got := seqLess(tc.a, tc.b); got != tc.expected {
			t.Errorf("seqLess(%d, %d) = %v, want %v", tc.a, tc.b, got, tc.expected)
		}
	}
}

func TestSeqGreaterEq(t *testing.T) {
	if !seqGreaterEq(5, 5) {
		t.Error("expected 5 >= 5")
	}
	if !seqGreaterEq(6, 5) {
		t.Error("expected 6 >= 5")
	}
	if seqGreaterEq(4, 5) {
		t.Error("expected 4 < 5")
	}
}
