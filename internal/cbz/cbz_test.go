package cbz

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"testing"
)

func TestIsImageEntry(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"page01.png", true},
		{"PAGE02.JPG", true},
		{"art/cover.jpeg", true},
		{"scan.tiff", true},
		{"page.webp", true},
		{"page.avif", true},
		{"ComicInfo.xml", false},
		{"notes.txt", false},
		{"thumbs.db", false},
	}
	for _, tt := range tests {
		if got := IsImageEntry(tt.name); got != tt.want {
			t.Errorf("IsImageEntry(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWriterPreservesOrderAndMethods(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.cbz")

	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	entries := []struct {
		name string
		data []byte
	}{
		{"01.webp", bytes.Repeat([]byte{0xAB}, 64)},
		{"info.txt", []byte("hello hello hello")},
		{"02.webp", bytes.Repeat([]byte{0xCD}, 64)},
	}
	for _, e := range entries {
		if err := w.Add(e.name, e.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got := r.Entries()
	if len(got) != len(entries) {
		t.Fatalf("archive has %d entries, want %d", len(got), len(entries))
	}
	for i, f := range got {
		if f.Name != entries[i].name {
			t.Errorf("entry %d = %s, want %s", i, f.Name, entries[i].name)
		}

		wantMethod := uint16(zip.Deflate)
		if IsImageEntry(f.Name) {
			wantMethod = zip.Store
		}
		if f.Method != wantMethod {
			t.Errorf("entry %s method = %d, want %d", f.Name, f.Method, wantMethod)
		}

		data, err := ReadEntry(f)
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		if !bytes.Equal(data, entries[i].data) {
			t.Errorf("entry %s content mismatch", f.Name)
		}
	}
}

func TestCountImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.cbz")

	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"01.png", "02.jpg", "ComicInfo.xml"} {
		if err := w.Add(name, []byte("data")); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	n, err := CountImages(path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("CountImages = %d, want 2", n)
	}
}

func TestOpenReaderMissingFile(t *testing.T) {
	if _, err := OpenReader(filepath.Join(t.TempDir(), "nope.cbz")); err == nil {
		t.Error("OpenReader accepted a missing file")
	}
}
