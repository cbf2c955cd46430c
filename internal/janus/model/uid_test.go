package model

import "testing"

func TestNormalizeUID_StripsSeparatorsAndUppercases(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"04:a1:b2:c3", "04A1B2C3"},
		{"04-A1-B2-C3", "04A1B2C3"},
		{"04 a1 b2 c3", "04A1B2C3"},
		{"04a1b2c3", "04A1B2C3"},
		{"  04A1B2C3  ", "04A1B2C3"},
		{"", ""},
		{":-_ ", ""},
	}
	for _, tc := range cases {
		if got := NormalizeUID(tc.raw); got != tc.want {
			t.Errorf("NormalizeUID(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeUID_EquivalentFormsShareOneHash(t *testing.T) {
	forms := []string{"04:a1:b2:c3", "04-A1-B2-C3", "04 a1 B2 c3", "04A1B2C3"}

	want := HashUID(NormalizeUID(forms[0]))
	for _, f := range forms[1:] {
		if got := HashUID(NormalizeUID(f)); got != want {
			t.Errorf("hash for %q diverged: %s != %s", f, got, want)
		}
	}
}

func TestHashUID_DistinctUIDsDistinctHashes(t *testing.T) {
	a := HashUID("04A1B2C3")
	b := HashUID("04A1B2C4")
	if a == b {
		t.Fatalf("distinct UIDs hashed identically: %s", a)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
