package kschedule

import "testing"

func TestFixedIntRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, -1, 63, -63, 1000} {
		if got := intToFixed(n).toInt(); got != n {
			t.Errorf("intToFixed(%d).toInt() = %d, want %d", n, got, n)
		}
	}
}

func TestFixedRound(t *testing.T) {
	cases := []struct {
		f    fixed
		want int
	}{
		{intToFixed(3), 3},
		{intToFixed(7).divInt(2), 4},  // 3.5 rounds to 4
		{intToFixed(-7).divInt(2), -4}, // -3.5 rounds to -4
	}
	for _, c := range cases {
		if got := c.f.round(); got != c.want {
			t.Errorf("round() = %d, want %d", got, c.want)
		}
	}
}

func TestFixedMulDiv(t *testing.T) {
	a := intToFixed(10)
	b := intToFixed(4)
	if got := a.div(b).round(); got != 3 { // 10/4 = 2.5, rounds to 3 (>=.5 rounds up)
		t.Errorf("10/4 round = %d, want 3", got)
	}
	if got := a.mul(b).toInt(); got != 40 {
		t.Errorf("10*4 = %d, want 40", got)
	}
}

func TestFixedAddSub(t *testing.T) {
	f := intToFixed(5).addInt(3).subInt(2)
	if got := f.toInt(); got != 6 {
		t.Errorf("5+3-2 = %d, want 6", got)
	}
}

func TestFixedString(t *testing.T) {
	if got := intToFixed(2).String(); got != "2.0000" {
		t.Errorf("String() = %q, want %q", got, "2.0000")
	}
}
