// Package resolver turns a pasted block of filesystem paths into classified
// batch inputs.
package resolver

import (
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies a resolved input path.
type Kind int

const (
	// KindImage is a single image file.
	KindImage Kind = iota
	// KindFolder is a directory of images.
	KindFolder
	// KindCBZ is a comic book archive.
	KindCBZ
	// KindMissing is a path that does not exist. Kept in the batch so the
	// pipeline can record a failure for it instead of halting.
	KindMissing
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindFolder:
		return "folder"
	case KindCBZ:
		return "cbz"
	case KindMissing:
		return "missing"
	}
	return "unknown"
}

// Item is one resolved input.
type Item struct {
	Path string
	Kind Kind
}

// Parse splits a newline-separated block of text into ordered items.
// Blank lines are skipped. Paths pasted from shells or file managers often
// carry wrapping quotes and carriage returns; both are stripped.
func Parse(text string) []Item {
	var items []Item
	for _, line := range strings.Split(text, "\n") {
		path := CleanPath(line)
		if path == "" {
			continue
		}
		items = append(items, Classify(path))
	}
	return items
}

// CleanPath normalizes a single pasted line.
func CleanPath(line string) string {
	path := strings.TrimSuffix(strings.TrimSpace(line), "\r")
	path = strings.Trim(path, `"`)
	path = strings.Trim(path, `'`)
	return strings.TrimSpace(path)
}

// Classify resolves one path to an item. Directories win over extension
// checks, so a directory named "pages.cbz" is still treated as a folder.
func Classify(path string) Item {
	info, err := os.Stat(path)
	if err != nil {
		return Item{Path: path, Kind: KindMissing}
	}
	if info.IsDir() {
		return Item{Path: path, Kind: KindFolder}
	}
	if strings.EqualFold(filepath.Ext(path), ".cbz") {
		return Item{Path: path, Kind: KindCBZ}
	}
	return Item{Path: path, Kind: KindImage}
}
