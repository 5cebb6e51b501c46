package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gen2brain/webp"
)

// testImage builds a deterministic opaque gradient.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestConvertCapsLongestSide(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		max          int
		wantW, wantH int
	}{
		{"landscape above cap", 300, 200, 150, 150, 100},
		{"portrait above cap", 200, 300, 150, 100, 150},
		{"within cap untouched", 120, 80, 150, 120, 80},
		{"cap disabled", 300, 200, 0, 300, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.MaxDimension = tt.max

			var out bytes.Buffer
			info, err := Convert(bytes.NewReader(pngBytes(t, testImage(tt.w, tt.h))), &out, opts)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if info.OutWidth != tt.wantW || info.OutHeight != tt.wantH {
				t.Errorf("reported size = %dx%d, want %dx%d", info.OutWidth, info.OutHeight, tt.wantW, tt.wantH)
			}

			decoded, err := webp.Decode(bytes.NewReader(out.Bytes()))
			if err != nil {
				t.Fatalf("decoding output: %v", err)
			}
			bounds := decoded.Bounds()
			if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
				t.Errorf("output size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestConvertLosslessRoundTrip(t *testing.T) {
	src := testImage(64, 48)
	opts := Options{Quality: 90, Lossless: true, Effort: 4}

	var out bytes.Buffer
	if _, err := Convert(bytes.NewReader(pngBytes(t, src)), &out, opts); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	decoded, err := webp.Decode(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}

	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			wr, wg, wb, wa := src.At(x, y).RGBA()
			gr, gg, gb, ga := decoded.At(x, y).RGBA()
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, decoded.At(x, y), src.At(x, y))
			}
		}
	}
}

func TestConvertRejectsGarbage(t *testing.T) {
	var out bytes.Buffer
	if _, err := Convert(bytes.NewReader([]byte("not an image")), &out, DefaultOptions()); err == nil {
		t.Error("Convert accepted undecodable input")
	}
}

func TestSwapExt(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"page01.png", "page01.webp"},
		{"cover.JPEG", "cover.webp"},
		{"art/page.02.tif", "art/page.02.webp"},
		{"noext", "noext.webp"},
	}
	for _, tt := range tests {
		if got := SwapExt(tt.input); got != tt.want {
			t.Errorf("SwapExt(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.gif", "e.bmp", "f.tiff", "g.webp", "h.avif"} {
		if !IsImageFile(name) {
			t.Errorf("IsImageFile(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"a.txt", "b.cbz", "c.mp3", "noext"} {
		if IsImageFile(name) {
			t.Errorf("IsImageFile(%q) = true, want false", name)
		}
	}
}
