package runlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "build.log")

	for _, msg := range []string{"first run", "second run"} {
		var console bytes.Buffer
		log, err := Open(path, &console, false)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		log.Info(msg, "rows", 3)
		log.Debug("hidden detail")
		if err := log.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		if !strings.Contains(console.String(), msg) {
			t.Errorf("Expected console to contain %q, got %q", msg, console.String())
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "first run") || !strings.Contains(content, "second run") {
		t.Errorf("Expected both runs in log, got:\n%s", content)
	}
	if !strings.Contains(content, "rows=3") {
		t.Errorf("Expected key/value attributes in log, got:\n%s", content)
	}
	if strings.Contains(content, "hidden detail") {
		t.Error("Expected debug records to be filtered without verbose")
	}
}

func TestOpenVerbose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.log")
	log, err := Open(path, nil, true)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	log.Debug("detail")
	log.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "detail") {
		t.Errorf("Expected debug record with verbose, got %q", data)
	}
}

func TestOpenUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if _, err := Open(filepath.Join(blocker, "build.log"), nil, false); err == nil {
		t.Error("Expected error when log directory is a file")
	}
}
