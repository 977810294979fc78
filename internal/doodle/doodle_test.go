package doodle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "innercanvas-doodle-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "doodle.png")
	payload := append(append([]byte{}, pngMagic...), []byte("fake image data")...)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(data) != len(payload) {
		t.Errorf("expected %d bytes, got %d", len(payload), len(data))
	}
}

func TestLoadRejectsNonPNG(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "innercanvas-doodle-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "doodle.png")
	if err := os.WriteFile(path, []byte("GIF89a not a png"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "not a PNG") {
		t.Errorf("expected a PNG validation error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/doodle.png"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
