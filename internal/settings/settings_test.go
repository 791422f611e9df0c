package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	combo := s.HotkeyCombo()
	if len(combo) != 2 || combo[0] != "shift" || combo[1] != "enter" {
		t.Errorf("default combo = %v, want [shift enter]", combo)
	}
	if s.WindowTitle() != "RuneLite" {
		t.Errorf("default title = %q", s.WindowTitle())
	}
	if s.ScriptOptions("Woodcutter") != nil {
		t.Error("expected nil options for a never-saved script")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.SetHotkeyCombo([]string{"f5"})
	s.SetScriptOptions("Wood Cutter", map[string]any{"count": 10, "mode": "bank"})
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	combo := reloaded.HotkeyCombo()
	if len(combo) != 1 || combo[0] != "f5" {
		t.Errorf("combo = %v, want [f5]", combo)
	}

	opts := reloaded.ScriptOptions("Wood Cutter")
	if opts == nil {
		t.Fatal("expected saved options to survive a reload")
	}
	if opts["mode"] != "bank" {
		t.Errorf("mode = %v, want bank", opts["mode"])
	}
}

func TestLoadCorruptFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("{{{ not yaml : ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load must tolerate a corrupt file, got %v", err)
	}
	combo := s.HotkeyCombo()
	if len(combo) != 2 || combo[0] != "shift" || combo[1] != "enter" {
		t.Errorf("combo after corrupt load = %v, want the defaults", combo)
	}
	if s.WindowTitle() != DefaultWindowTitle {
		t.Errorf("title after corrupt load = %q", s.WindowTitle())
	}
}

func TestScriptKeyNormalization(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s.SetScriptOptions("Fire Maker", map[string]any{"logs": "oak"})
	if got := s.ScriptOptions("fire maker"); got == nil {
		t.Error("lookup should be case and space insensitive")
	}
}
