package types

import "testing"

func TestSize(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		want int
	}{
		{"u0", U0, 0},
		{"s8", S8, 1},
		{"u16", U16, 2},
		{"s32", S32, 4},
		{"u64", U64, 8},
		{"pointer to u8", ToPtr(U8), 8},
		{"pointer to pointer to s64", ToPtr(ToPtr(S64)), 8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Size(c.typ); got != c.want {
				t.Errorf("Size(%s) = %d, want %d", String(c.typ), got, c.want)
			}
		})
	}
}

func TestBiggerTieBreak(t *testing.T) {
	// spec's Bigger favors t1 on a tie, even though the two types differ in
	// signedness: the size, not the signedness, decides this.
	if got := Bigger(S32, U32); got != S32 {
		t.Errorf("Bigger(s32, u32) = %s, want s32 (tie favors t1)", String(got))
	}
	if got := Bigger(U16, S64); got != S64 {
		t.Errorf("Bigger(u16, s64) = %s, want s64", String(got))
	}
}

func TestFits(t *testing.T) {
	cases := []struct {
		name     string
		src, dst Type
		want     bool
	}{
		{"identity", S32, S32, true},
		{"widen unsigned to unsigned", U8, U32, true},
		{"narrow fails", U32, U8, false},
		{"signed to unsigned of same size ok", S8, U8, true},
		{"unsigned to signed of same size fails", U16, S16, false},
		{"unsigned narrower than signed of bigger size ok", U8, S16, true},
		{"pointer depth mismatch fails", ToPtr(U8), ToPtr(ToPtr(U8)), false},
		{"pointer signedness mismatch fails despite same depth and class", ToPtr(U8), ToPtr(S8), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Fits(c.src, c.dst); got != c.want {
				t.Errorf("Fits(%s, %s) = %v, want %v", String(c.src), String(c.dst), got, c.want)
			}
		})
	}
}

func TestClassOnlyCollapsesPointerDepth(t *testing.T) {
	multi := ToPtr(ToPtr(U8))
	if got := ClassOnly(multi); got != class(U8) {
		t.Errorf("ClassOnly(u8**) = %s, want class-only u8", String(got))
	}
}

func TestFromInt(t *testing.T) {
	cases := []struct {
		n    int64
		want Type
	}{
		{100, S8},
		{255, S8},
		{256, S16},
		{65535, S16},
		{65536, S32},
		{1 << 32, S64},
	}
	for _, c := range cases {
		if got := FromInt(c.n); got != c.want {
			t.Errorf("FromInt(%d) = %s, want %s", c.n, String(got), String(c.want))
		}
	}
}

func TestFromStrRoundTrip(t *testing.T) {
	for _, name := range []string{"s0", "u0", "s8", "u8", "s16", "u16", "s32", "u32", "s64", "u64"} {
		typ, ok := FromStr(name)
		if !ok {
			t.Fatalf("FromStr(%q) failed", name)
		}
		if got := String(typ); got != name {
			t.Errorf("String(FromStr(%q)) = %q, want %q", name, got, name)
		}
	}
	if _, ok := FromStr("not-a-type"); ok {
		t.Error("FromStr on garbage should fail")
	}
}
