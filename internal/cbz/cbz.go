// Package cbz reads and writes comic book archives (ZIP files of page
// images). Entry order is significant: readers see pages in stored order and
// the writer preserves the order entries are added.
package cbz

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
)

// IsImageEntry reports whether an archive entry name looks like a page image.
func IsImageEntry(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".jpg"),
		strings.HasSuffix(lower, ".jpeg"),
		strings.HasSuffix(lower, ".png"),
		strings.HasSuffix(lower, ".gif"),
		strings.HasSuffix(lower, ".bmp"),
		strings.HasSuffix(lower, ".tif"),
		strings.HasSuffix(lower, ".tiff"),
		strings.HasSuffix(lower, ".webp"),
		strings.HasSuffix(lower, ".avif"):
		return true
	default:
		return false
	}
}

// Reader exposes the entries of an existing archive in stored order.
type Reader struct {
	rc *zip.ReadCloser
}

func OpenReader(path string) (*Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	return &Reader{rc: rc}, nil
}

// Entries returns all file entries, skipping directory markers.
func (r *Reader) Entries() []*zip.File {
	entries := make([]*zip.File, 0, len(r.rc.File))
	for _, f := range r.rc.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		entries = append(entries, f)
	}
	return entries
}

func (r *Reader) Close() error {
	return r.rc.Close()
}

// ReadEntry reads a whole entry into memory.
func ReadEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// CountImages scans an archive and counts its image entries without
// decompressing anything.
func CountImages(path string) (int, error) {
	r, err := OpenReader(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n := 0
	for _, f := range r.Entries() {
		if IsImageEntry(f.Name) {
			n++
		}
	}
	return n, nil
}

// Writer builds a new archive. Image entries are stored uncompressed since
// their codecs already compress; everything else deflates.
type Writer struct {
	f  *os.File
	zw *zip.Writer
}

func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive %s: %w", path, err)
	}
	return &Writer{f: f, zw: zip.NewWriter(f)}, nil
}

func (w *Writer) Add(name string, data []byte) error {
	method := zip.Deflate
	if IsImageEntry(name) {
		method = zip.Store
	}
	header := &zip.FileHeader{Name: name, Method: method}
	entry, err := w.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding entry %s: %w", name, err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("writing entry %s: %w", name, err)
	}
	return nil
}

func (w *Writer) Close() error {
	if err := w.zw.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
