package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocribo/cribo/internal/config"
)

func TestLoadFallsBackToDefaultWhenMissing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "cribo.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := config.Default()
	if len(cfg.Src) != len(want.Src) || cfg.Src[0] != want.Src[0] {
		t.Fatalf("expected default Src %v, got %v", want.Src, cfg.Src)
	}
	if cfg.PythonVersion != want.PythonVersion {
		t.Fatalf("expected default PythonVersion %d, got %d", want.PythonVersion, cfg.PythonVersion)
	}
	if cfg.PreserveComments != want.PreserveComments {
		t.Fatalf("expected default PreserveComments %v, got %v", want.PreserveComments, cfg.PreserveComments)
	}
}

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cribo.toml")
	content := "src = [\"app\", \"lib\"]\npython_version = 311\npreserve_comments = true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Src) != 2 || cfg.Src[0] != "app" || cfg.Src[1] != "lib" {
		t.Fatalf("unexpected Src: %v", cfg.Src)
	}
	if cfg.PythonVersion != 311 {
		t.Fatalf("expected PythonVersion 311, got %d", cfg.PythonVersion)
	}
	if !cfg.PreserveComments {
		t.Fatalf("expected PreserveComments true")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty src", "src = []\n"},
		{"python version too low", "src = [\".\"]\npython_version = 27\n"},
		{"python version too high", "src = [\".\"]\npython_version = 400\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "cribo.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := config.Load(path); err == nil {
				t.Fatalf("expected Load to reject %q", tc.content)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Fatalf("Default() failed Validate: %v", err)
	}
}
