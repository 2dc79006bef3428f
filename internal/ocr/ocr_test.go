package ocr

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestHashImage(t *testing.T) {
	a := HashImage([]byte("image-bytes"))
	b := HashImage([]byte("image-bytes"))
	c := HashImage([]byte("image-byteT"))

	if len(a) != 64 {
		t.Errorf("HashImage() length = %d, want 64 hex chars", len(a))
	}
	if a != b {
		t.Error("HashImage() not stable for identical bytes")
	}
	if a == c {
		t.Error("HashImage() identical for different bytes")
	}
}

func TestSidecarPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"shot.png", "shot.txt"},
		{"/tmp/acc/shot.jpeg", "/tmp/acc/shot.txt"},
		{"/tmp/dir.with.dots/shot", "/tmp/dir.with.dots/shot.txt"},
	}
	for _, tt := range tests {
		if got := SidecarPath(tt.in); got != tt.want {
			t.Errorf("SidecarPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSidecarEngine(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "shot.png")

	if err := os.WriteFile(imagePath, []byte("fake-png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "shot.txt"), []byte("Coffee Shop $4.50"), 0o644); err != nil {
		t.Fatal(err)
	}

	engine := NewSidecarEngine()
	result, err := engine.ExtractText(context.Background(), imagePath)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if result.Text != "Coffee Shop $4.50" {
		t.Errorf("text = %q", result.Text)
	}
	if result.ImageHash != HashImage([]byte("fake-png-bytes")) {
		t.Error("image hash does not match content hash of image bytes")
	}
}

func TestSidecarEngine_MissingSidecar(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(imagePath, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewSidecarEngine().ExtractText(context.Background(), imagePath); err == nil {
		t.Error("ExtractText() expected error for missing sidecar")
	}
}

func TestSidecarEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSidecarEngine().ExtractText(ctx, "irrelevant.png"); err == nil {
		t.Error("ExtractText() expected error for cancelled context")
	}
}
