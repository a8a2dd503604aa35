package cli

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sm-kiosk/internal/export"
	"sm-kiosk/internal/flash"
	"sm-kiosk/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SM_LOG_LEVEL", "")
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

// writeConfig writes a config running script with sh in a fresh work dir.
func writeConfig(t *testing.T, script string) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`version: 1
pipeline:
  command: [sh, -c, %q]
  workdir: %q
  history: %q
`, script, dir, filepath.Join(dir, "history.csv"))
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path, dir
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "sm ") || !strings.Contains(out, version.Commit) {
		t.Errorf("version output = %q", out)
	}
}

func TestConfigPathAndInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sm", "config.yaml")

	out, err := execute(t, "--config", path, "config", "path")
	if err != nil || strings.TrimSpace(out) != path {
		t.Fatalf("config path = %q, %v", out, err)
	}

	if _, err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	_, err = execute(t, "--config", path, "config", "init")
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Errorf("second init error = %v, want refusal", err)
	}
	if _, err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("init --force error: %v", err)
	}
}

func TestSnapshotCommand(t *testing.T) {
	cfgPath, dir := writeConfig(t, "true")
	out := filepath.Join(dir, "shots", "anna.png")

	if _, err := execute(t, "--config", cfgPath, "snapshot", "-o", out, "-W", "120", "-H", "60", "Anna"); err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("snapshot is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 60 {
		t.Errorf("snapshot bounds = %v, want 120x60", b)
	}
}

func TestSnapshotRejectsBadSize(t *testing.T) {
	cfgPath, dir := writeConfig(t, "true")
	_, err := execute(t, "--config", cfgPath, "snapshot", "-o", filepath.Join(dir, "x.png"), "-W", "0", "Anna")
	if err == nil {
		t.Error("zero width should fail")
	}
}

func TestFlashSuccessIsRecorded(t *testing.T) {
	cfgPath, dir := writeConfig(t, `test "$(cat text.txt)" = "Anna Lena"`)

	out, err := execute(t, "--config", cfgPath, "flash", "Anna", "Lena")
	if err != nil {
		t.Fatalf("flash error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "success") {
		t.Errorf("flash output = %q", out)
	}

	runs, err := export.ReadRuns(filepath.Join(dir, "history.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status() != "OK" {
		t.Fatalf("history = %+v", runs)
	}

	out, err = execute(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	if !strings.Contains(out, "1 run(s), 0 failed.") {
		t.Errorf("history output = %q", out)
	}
}

func TestFlashFailure(t *testing.T) {
	cfgPath, dir := writeConfig(t, "echo broken >&2; exit 4")

	out, err := execute(t, "--config", cfgPath, "flash", "Anna")
	var exitErr *flash.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode != 4 {
		t.Fatalf("flash error = %v, want exit code 4", err)
	}
	if !strings.Contains(out, "failure") || !strings.Contains(out, "broken") {
		t.Errorf("flash output = %q", out)
	}

	txt := filepath.Join(dir, "runs.txt")
	if _, err := execute(t, "--config", cfgPath, "history", "--txt", txt); err != nil {
		t.Fatalf("history --txt error: %v", err)
	}
	data, err := os.ReadFile(txt)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Outcome:         failure") {
		t.Errorf("text export = %q", data)
	}
}

func TestFlashNeedsMessage(t *testing.T) {
	cfgPath, _ := writeConfig(t, "true")
	if _, err := execute(t, "--config", cfgPath, "flash"); err == nil {
		t.Error("flash without a message should fail")
	}
}

func TestCheckCommand(t *testing.T) {
	cfgPath, _ := writeConfig(t, "true")
	out, err := execute(t, "--config", cfgPath, "check")
	if err != nil || !strings.Contains(out, "pipeline ready") {
		t.Errorf("check = %q, %v", out, err)
	}

	dir := t.TempDir()
	missing := filepath.Join(dir, "config.yaml")
	body := "version: 1\npipeline:\n  command: [definitely-not-installed-sm-binary]\n"
	if err := os.WriteFile(missing, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", missing, "check"); err == nil {
		t.Error("check should fail for a missing binary")
	}
}

func TestHistoryNeedsLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := execute(t, "--config", path, "history")
	if err == nil || !strings.Contains(err.Error(), "pipeline.history") {
		t.Errorf("history error = %v", err)
	}
}

func TestHistoryBadDate(t *testing.T) {
	cfgPath, _ := writeConfig(t, "true")
	if _, err := execute(t, "--config", cfgPath, "history", "--date", "18.02.2026"); err == nil {
		t.Error("malformed --date should fail")
	}
}

func TestPrintRunsEmpty(t *testing.T) {
	var b bytes.Buffer
	printRuns(&b, nil)
	if !strings.Contains(b.String(), "No runs") {
		t.Errorf("printRuns(nil) = %q", b.String())
	}
}

func TestBadLogLevel(t *testing.T) {
	if _, err := execute(t, "--log-level", "loud", "version"); err == nil {
		t.Error("unknown log level should fail")
	}
}
