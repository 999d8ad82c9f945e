package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetRenderDistanceClamps(t *testing.T) {
	defer func() { SetRenderDistance(defaults().Render.Distance) }()

	SetRenderDistance(1)
	if got := GetRenderDistance(); got != 2 {
		t.Fatalf("below minimum: got %d, want 2", got)
	}
	SetRenderDistance(100)
	if got := GetRenderDistance(); got != 32 {
		t.Fatalf("above maximum: got %d, want 32", got)
	}
	SetRenderDistance(12)
	if got := GetRenderDistance(); got != 12 {
		t.Fatalf("in range: got %d, want 12", got)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.toml")); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if got := Get().Render.UploadBudget; got != defaults().Render.UploadBudget {
		t.Fatalf("defaults not preserved: got %d", got)
	}
}

func TestLoadParsesAndClamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	body := `
[render]
distance = 99
fov = 80.0

[mesher]
workers = 3

[world]
seed = 7
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	defer func() {
		mu.Lock()
		global = defaults()
		mu.Unlock()
	}()

	if err := Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	s := Get()
	if s.Render.Distance != 32 {
		t.Fatalf("distance not clamped: got %d, want 32", s.Render.Distance)
	}
	if s.Render.FOV != 80 {
		t.Fatalf("fov: got %v, want 80", s.Render.FOV)
	}
	if s.Mesher.Workers != 3 {
		t.Fatalf("workers: got %d, want 3", s.Mesher.Workers)
	}
	if s.World.Seed != 7 {
		t.Fatalf("seed: got %d, want 7", s.World.Seed)
	}
	// Unset sections fall back to defaults.
	if s.Window.Width != defaults().Window.Width {
		t.Fatalf("window width default lost: got %d", s.Window.Width)
	}
}
