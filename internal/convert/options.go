package convert

import (
	"fmt"

	"github.com/gen2brain/webp"
)

// Options holds the encoding and resize parameters for one batch run.
// Immutable once the pipeline starts.
type Options struct {
	// Quality is the WebP quality factor, 0-100.
	Quality int
	// Lossless enables lossless WebP compression; Quality is ignored.
	Lossless bool
	// Effort is the cwebp method parameter, 1-6. Higher is slower and
	// compresses better.
	Effort int
	// MaxDimension caps the longest image side in pixels. Zero disables
	// resizing.
	MaxDimension int
}

// DefaultOptions mirrors the defaults of the desktop tool this replaces.
func DefaultOptions() Options {
	return Options{Quality: 90, Effort: 4}
}

func (o Options) Validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return fmt.Errorf("quality must be in range 0-100, got %d", o.Quality)
	}
	if o.Effort < 1 || o.Effort > 6 {
		return fmt.Errorf("effort must be in range 1-6, got %d", o.Effort)
	}
	if o.MaxDimension < 0 {
		return fmt.Errorf("max dimension must be positive, got %d", o.MaxDimension)
	}
	return nil
}

// encoderOptions maps to the codec's option struct. Exact is tied to
// Lossless so fully transparent pixels keep their RGB values and a lossless
// round trip is pixel-identical.
func (o Options) encoderOptions() webp.Options {
	return webp.Options{
		Quality:  o.Quality,
		Lossless: o.Lossless,
		Method:   o.Effort,
		Exact:    o.Lossless,
	}
}
