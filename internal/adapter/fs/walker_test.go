package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkerDefaultIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.pdf"))
	writeFile(t, filepath.Join(dir, "syllabus.txt"))
	writeFile(t, filepath.Join(dir, "photo.jpg"))
	writeFile(t, filepath.Join(dir, "sub", "deep.md"))

	files, err := NewWalker(nil, nil).Walk(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if filepath.Ext(f) == ".jpg" {
			t.Errorf("non-document file included: %s", f)
		}
	}
}

func TestWalkerExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.txt"))
	writeFile(t, filepath.Join(dir, "drafts", "skip.txt"))

	files, err := NewWalker(nil, []string{"drafts/**"}).Walk(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "keep.txt" {
		t.Errorf("unexpected file: %s", files[0])
	}
}
