// Package imaging normalises uploaded item photos.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Defaults for stored item photos.
const (
	DefaultMaxDimension = 800
	DefaultQuality      = 85
	// MaxUploadBytes caps the size of an accepted upload.
	MaxUploadBytes = 5 << 20
)

// ErrUnsupportedFormat is returned for uploads that are not JPEG, PNG or WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Options tune Normalize. Zero values select the defaults.
type Options struct {
	MaxDimension int
	Quality      int
}

// Image is a normalised photo ready to be stored.
type Image struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Normalize sniffs the upload's real format, shrinks it so neither side
// exceeds the maximum dimension, and re-encodes it as JPEG.
func Normalize(r io.Reader, opts Options) (*Image, error) {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("image larger than %d bytes", MaxUploadBytes)
	}

	// Client-supplied content types are not trusted.
	if detected := http.DetectContentType(data); !accepted[detected] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = fit(img, opts.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Image{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// fit scales img down, keeping its aspect ratio, so that neither side exceeds
// maxDim. Smaller images are returned unchanged.
func fit(img image.Image, maxDim int) image.Image {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}
