package flash

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.WorkDir = t.TempDir()
	return cfg
}

func TestRenderWithoutTemplate(t *testing.T) {
	cfg := tempConfig(t)
	got, err := Render(cfg, "Anna")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(got) != "Anna\n" {
		t.Errorf("Render() = %q, want %q", got, "Anna\n")
	}
}

func TestRenderReplacesEveryPlaceholder(t *testing.T) {
	cfg := tempConfig(t)
	tmpl := "Hallo VORNAME!\nTschuess VORNAME\n"
	if err := os.WriteFile(filepath.Join(cfg.WorkDir, "text.orig"), []byte(tmpl), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Render(cfg, "Anna")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "Hallo Anna!\nTschuess Anna\n"
	if string(got) != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestStageWritesOutput(t *testing.T) {
	cfg := tempConfig(t)
	path, err := Stage(cfg, "Hi")
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	if path != filepath.Join(cfg.WorkDir, "text.txt") {
		t.Errorf("Stage() path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Hi\n" {
		t.Errorf("staged file = %q", data)
	}
}

func TestStageMissingDirectory(t *testing.T) {
	cfg := tempConfig(t)
	cfg.WorkDir = filepath.Join(cfg.WorkDir, "missing")

	_, err := Stage(cfg, "Hi")
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	if got := resolve("/srv", "text.txt"); got != filepath.Join("/srv", "text.txt") {
		t.Errorf("resolve() = %q", got)
	}
	if got := resolve("/srv", "/tmp/text.txt"); got != "/tmp/text.txt" {
		t.Errorf("resolve() absolute = %q", got)
	}
	if got := resolve("", "text.txt"); got != "text.txt" {
		t.Errorf("resolve() no dir = %q", got)
	}
}
