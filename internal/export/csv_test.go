package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sm-kiosk/internal/model"
)

func sampleRuns() []model.Run {
	ok := model.Run{StartedAt: testDate, Command: "make eeflash", Message: "Anna"}
	ok.Succeed(testDate.Add(2 * time.Second))

	failed := model.Run{StartedAt: testDate.Add(time.Minute), Command: "make eeflash", Message: "Bob; \"the\" builder"}
	failed.Fail(testDate.Add(time.Minute+time.Second), errors.New("exit status 2"))

	pending := model.Run{StartedAt: testDate.Add(2 * time.Minute), Command: "make eeflash", Message: "Eve"}
	return []model.Run{ok, failed, pending}
}

func TestAppendRuns_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "history.csv")
	runs := sampleRuns()

	if err := AppendRuns(path, runs[0]); err != nil {
		t.Fatalf("AppendRuns() error: %v", err)
	}
	if err := AppendRuns(path, runs[1:]...); err != nil {
		t.Fatalf("AppendRuns() second call error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Contains(content, "Anna") {
		t.Error("history file should not contain message text")
	}
	if n := strings.Count(content, "started_at;"); n != 1 {
		t.Errorf("header written %d times, want 1", n)
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 4 {
		t.Errorf("got %d lines, want 4:\n%s", len(lines), content)
	}
	if !strings.Contains(lines[1], ";success;2000;") {
		t.Errorf("success row = %q", lines[1])
	}
}

func TestReadRuns_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	want := sampleRuns()
	if err := AppendRuns(path, want...); err != nil {
		t.Fatal(err)
	}

	got, err := ReadRuns(path)
	if err != nil {
		t.Fatalf("ReadRuns() error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ReadRuns() returned %d runs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Command != want[i].Command || got[i].Outcome != want[i].Outcome || got[i].Error != want[i].Error {
			t.Errorf("run %d = %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].StartedAt.Equal(want[i].StartedAt) || got[i].Duration() != want[i].Duration() {
			t.Errorf("run %d timing = %v/%v, want %v/%v",
				i, got[i].StartedAt, got[i].Duration(), want[i].StartedAt, want[i].Duration())
		}
	}
	if !got[2].Pending() {
		t.Error("pending run should read back pending")
	}
	if got[1].Message != "" {
		t.Errorf("message text should not be stored, got %q", got[1].Message)
	}
}

func TestReadRuns_MissingFile(t *testing.T) {
	runs, err := ReadRuns(filepath.Join(t.TempDir(), "nope.csv"))
	if err != nil || runs != nil {
		t.Errorf("ReadRuns(missing) = %v, %v; want nil, nil", runs, err)
	}
}

func TestReadRuns_BadOutcome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	row := "2026-02-18T14:32:07Z;;make;exploded;0;\n"
	if err := os.WriteFile(path, []byte(row), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadRuns(path)
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("ReadRuns() error = %v, want line 1 failure", err)
	}
}

func TestWriteTXT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.txt")
	if err := WriteTXT(path, sampleRuns()); err != nil {
		t.Fatalf("WriteTXT() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "=== Flash Run ==="); n != 3 {
		t.Errorf("WriteTXT() wrote %d blocks, want 3", n)
	}
	if !strings.Contains(string(data), "Error: exit status 2") {
		t.Error("failure error missing from text output")
	}
}
