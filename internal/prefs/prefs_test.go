package prefs

import (
	"path/filepath"
	"testing"
)

func TestPrefsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")

	p := LoadFrom(path)
	p.SetString("last_image", "/data/cells.tif")
	p.SetFloat("pixel_size", 0.25)
	p.SetBool("cache", false)
	p.SetStrings("recent_plugins", []string{"spotdetect", "roistats"})
	if err := p.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	q := LoadFrom(path)
	if got := q.String("last_image"); got != "/data/cells.tif" {
		t.Errorf("last_image = %q", got)
	}
	if got := q.Float("pixel_size", 1); got != 0.25 {
		t.Errorf("pixel_size = %v", got)
	}
	if q.Bool("cache", true) {
		t.Errorf("cache should be false")
	}
	recent := q.Strings("recent_plugins")
	if len(recent) != 2 || recent[0] != "spotdetect" || recent[1] != "roistats" {
		t.Errorf("recent_plugins = %v", recent)
	}
}

func TestPrefsDefaults(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if p.String("nope") != "" {
		t.Errorf("missing string should be empty")
	}
	if p.Float("nope", 3.5) != 3.5 {
		t.Errorf("missing float should fall back")
	}
	if !p.Bool("nope", true) {
		t.Errorf("missing bool should fall back")
	}
	if p.Strings("nope") != nil {
		t.Errorf("missing list should be nil")
	}
}
