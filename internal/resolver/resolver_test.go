package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/plain/path.png", "/plain/path.png"},
		{"  /padded/path.png  ", "/padded/path.png"},
		{`"/quoted/path.png"`, "/quoted/path.png"},
		{`'/single quoted/path.png'`, "/single quoted/path.png"},
		{"/windows/paste.png\r", "/windows/paste.png"},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := CleanPath(tt.input)
			if got != tt.want {
				t.Errorf("CleanPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	dir := t.TempDir()

	folder := filepath.Join(dir, "pages")
	if err := os.Mkdir(folder, 0755); err != nil {
		t.Fatal(err)
	}
	image := filepath.Join(dir, "cover.png")
	if err := os.WriteFile(image, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(dir, "Book.CBZ")
	if err := os.WriteFile(archive, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "nope.jpg")

	text := "\n" + image + "\r\n\"" + folder + "\"\n\n" + archive + "\n" + missing + "\n"
	items := Parse(text)

	want := []Item{
		{Path: image, Kind: KindImage},
		{Path: folder, Kind: KindFolder},
		{Path: archive, Kind: KindCBZ},
		{Path: missing, Kind: KindMissing},
	}

	if len(items) != len(want) {
		t.Fatalf("Parse returned %d items, want %d: %v", len(items), len(want), items)
	}
	for i, item := range items {
		if item != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, item, want[i])
		}
	}
}

func TestClassifyDirectoryWinsOverExtension(t *testing.T) {
	dir := t.TempDir()
	trap := filepath.Join(dir, "pages.cbz")
	if err := os.Mkdir(trap, 0755); err != nil {
		t.Fatal(err)
	}

	item := Classify(trap)
	if item.Kind != KindFolder {
		t.Errorf("Classify(%q).Kind = %v, want %v", trap, item.Kind, KindFolder)
	}
}

func TestParseSkipsBlankInput(t *testing.T) {
	if items := Parse("\n\n  \n\r\n"); len(items) != 0 {
		t.Errorf("Parse of blank input returned %d items, want 0", len(items))
	}
}
