package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "everyday_checking", "shot1.png"))
	writeFile(t, filepath.Join(root, "everyday_checking", "shot1.txt")) // sidecar, not a screenshot
	writeFile(t, filepath.Join(root, "savings", "shot2.JPG"))
	writeFile(t, filepath.Join(root, "loose.jpeg"))
	writeFile(t, filepath.Join(root, "notes.md"))

	results, err := New(root).Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Scan() found %d files, want 3", len(results))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	byName := map[string]string{}
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r.AccountName
	}

	if byName["shot1.png"] != "Everyday Checking" {
		t.Errorf("account for shot1.png = %q, want %q", byName["shot1.png"], "Everyday Checking")
	}
	if byName["shot2.JPG"] != "Savings" {
		t.Errorf("account for shot2.JPG = %q, want %q", byName["shot2.JPG"], "Savings")
	}
	if byName["loose.jpeg"] != "" {
		t.Errorf("account for loose.jpeg = %q, want empty (no account directory)", byName["loose.jpeg"])
	}
}

func TestScan_EmptyDirectory(t *testing.T) {
	results, err := New(t.TempDir()).Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Scan() found %d files in empty dir, want 0", len(results))
	}
}

func TestScan_MissingDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing")).Scan(); err == nil {
		t.Error("Scan() expected error for missing directory")
	}
}
