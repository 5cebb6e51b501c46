package convert

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	_ "github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
	".avif": true,
}

// IsImageFile reports whether the file name has a supported image extension.
func IsImageFile(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// SwapExt replaces the file extension with .webp.
func SwapExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".webp"
}

// Info describes a single conversion for logging.
type Info struct {
	Width, Height       int
	OutWidth, OutHeight int
}

func (i Info) Resized() bool {
	return i.OutWidth != i.Width || i.OutHeight != i.Height
}

func (i Info) String() string {
	if i.Resized() {
		return fmt.Sprintf("%dx%d → %dx%d", i.Width, i.Height, i.OutWidth, i.OutHeight)
	}
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}

// Convert decodes one image from r, applies the optional longest-side cap
// and writes WebP to w.
func Convert(r io.Reader, w io.Writer, opts Options) (Info, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Info{}, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	info := Info{Width: bounds.Dx(), Height: bounds.Dy()}

	img = capLongestSide(img, opts.MaxDimension)
	scaled := img.Bounds()
	info.OutWidth, info.OutHeight = scaled.Dx(), scaled.Dy()

	if err := webp.Encode(w, img, opts.encoderOptions()); err != nil {
		return info, fmt.Errorf("encoding webp: %w", err)
	}
	return info, nil
}

// capLongestSide downscales img with Lanczos resampling so its longest side
// is at most max pixels, preserving aspect ratio. Images already within the
// cap, and a zero cap, pass through untouched.
func capLongestSide(img image.Image, max int) image.Image {
	if max <= 0 {
		return img
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= max && h <= max {
		return img
	}
	if w >= h {
		return resize.Resize(uint(max), 0, img, resize.Lanczos3)
	}
	return resize.Resize(0, uint(max), img, resize.Lanczos3)
}
