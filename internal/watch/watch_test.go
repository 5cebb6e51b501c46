package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherHandlesNewImage(t *testing.T) {
	dir := t.TempDir()

	handled := make(chan string, 10)
	w, err := New(dir, func(path string) {
		handled <- path
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	target := filepath.Join(dir, "incoming.png")
	if err := os.WriteFile(target, []byte("png bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-handled:
		if got != target {
			t.Errorf("handled %s, want %s", got, target)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never handled the new file")
	}
}

func TestWatcherIgnoresOwnOutput(t *testing.T) {
	dir := t.TempDir()

	handled := make(chan string, 10)
	w, err := New(dir, func(path string) {
		handled <- path
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "done.webp"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-handled:
		t.Errorf("watcher handled %s, want nothing", got)
	case <-time.After(1 * time.Second):
	}
}

func TestWantFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/in/a.png", true},
		{"/in/b.JPG", true},
		{"/in/c.avif", true},
		{"/in/d.webp", false},
		{"/in/e.txt", false},
	}
	for _, tt := range tests {
		if got := wantFile(tt.path); got != tt.want {
			t.Errorf("wantFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
