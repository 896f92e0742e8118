package plugin

import "testing"

func TestVersionString(t *testing.T) {
	cases := []struct {
		v    Version
		want string
	}{
		{Version{Major: 1, Minor: 2, Patch: 3}, "1.2.3"},
		{Version{Major: 1, Minor: 2, Patch: 3, Snapshot: SnapshotBeta}, "1.2.3-beta"},
		{Version{Major: 0, Minor: 9, Snapshot: SnapshotAlpha}, "0.9.0-alpha"},
		{Version{Major: 2, Snapshot: SnapshotRC}, "2.0.0-rc"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestVersionParseRoundTrip(t *testing.T) {
	for _, s := range []string{"1.2.3", "1.2.3-beta", "0.0.1-alpha", "4.1.0-rc"} {
		v, err := ParseVersion(s)
		if err != nil {
			t.Fatalf("ParseVersion(%q): %v", s, err)
		}
		if got := v.String(); got != s {
			t.Errorf("round trip %q gave %q", s, got)
		}
	}
}

func TestVersionParseInvalid(t *testing.T) {
	for _, s := range []string{"1.2.3.4", "a.b.c", "1.2.3-nightly", "-1.0.0"} {
		if _, err := ParseVersion(s); err == nil {
			t.Errorf("ParseVersion(%q) succeeded, want error", s)
		}
	}
}

func TestVersionReleaseOutranksSnapshots(t *testing.T) {
	release := Version{Major: 1, Minor: 2, Patch: 3, Snapshot: SnapshotNone}
	beta := Version{Major: 1, Minor: 2, Patch: 3, Snapshot: SnapshotBeta}
	if !release.IsGreater(beta) {
		t.Errorf("release 1.2.3 should outrank 1.2.3-beta")
	}
	if !beta.IsLower(release) {
		t.Errorf("1.2.3-beta should be lower than release 1.2.3")
	}
}

func TestVersionCompareOrdering(t *testing.T) {
	ordered := []Version{
		{Major: 1, Snapshot: SnapshotAlpha},
		{Major: 1, Snapshot: SnapshotBeta},
		{Major: 1, Snapshot: SnapshotRC},
		{Major: 1},
		{Major: 1, Patch: 1},
		{Major: 1, Minor: 1},
		{Major: 2, Snapshot: SnapshotAlpha},
	}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i].IsGreater(ordered[i-1]) {
			t.Errorf("%s should be greater than %s", ordered[i], ordered[i-1])
		}
	}
}

func TestVersionZero(t *testing.T) {
	if !(Version{}).IsZero() {
		t.Errorf("empty version should be zero")
	}
	v, err := ParseVersion("")
	if err != nil {
		t.Fatalf("ParseVersion(\"\"): %v", err)
	}
	if !v.IsZero() {
		t.Errorf("parsed empty string should be the zero version")
	}
}
