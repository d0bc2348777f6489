package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const defaultMaxPixels = 40_000_000

// ErrTooManyPixels is returned before decoding when the declared size exceeds MaxPixels
var ErrTooManyPixels = errors.New("image dimensions too large")

// Config for image processing
type Config struct {
	MaxWidth  int // default 2000
	MaxHeight int // default 2000
	Quality   int // JPEG quality 1-100, default 85
	MaxPixels int // decode limit on width*height, default 40MP
}

// DefaultConfig returns the settings used for space photos
func DefaultConfig() Config {
	return Config{MaxWidth: 2000, MaxHeight: 2000, Quality: 85, MaxPixels: defaultMaxPixels}
}

// Processed is a re-encoded JPEG and its final dimensions
type Processed struct {
	Data   []byte
	Width  int
	Height int
}

// ContentType of every processed image
const ContentType = "image/jpeg"

// Processor normalises uploaded photos
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	if config.MaxWidth <= 0 {
		config.MaxWidth = 2000
	}
	if config.MaxHeight <= 0 {
		config.MaxHeight = 2000
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = 85
	}
	if config.MaxPixels <= 0 {
		config.MaxPixels = defaultMaxPixels
	}
	return &Processor{config: config}
}

// Process decodes data, applies EXIF orientation, shrinks it to fit the
// configured box and re-encodes it as JPEG. Smaller images are never upscaled.
func (p *Processor) Process(data []byte) (*Processed, error) {
	// the header is cheap to read; a tiny compressed file can declare a huge canvas
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(p.config.MaxPixels) {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > p.config.MaxWidth || b.Dy() > p.config.MaxHeight {
		img = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}

	// JPEG has no alpha; flatten onto white rather than black
	flat := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), image.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &Processed{
		Data:   buf.Bytes(),
		Width:  flat.Bounds().Dx(),
		Height: flat.Bounds().Dy(),
	}, nil
}
