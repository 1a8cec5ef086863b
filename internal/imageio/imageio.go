// Package imageio loads images as 8-bit gray and writes gray images in the
// format implied by the file extension.
package imageio

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads any registered format (PNG, JPEG, GIF, BMP, TIFF, WebP) and
// converts it to gray with its origin moved to (0, 0).
func Decode(r io.Reader) (*image.Gray, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return ToGray(img), format, nil
}

// ToGray converts img to an *image.Gray with bounds starting at (0, 0).
// Gray inputs are copied, never aliased.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, b.Min, xdraw.Src)
	return gray
}

// LoadGray opens and decodes the image at path.
func LoadGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	gray, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return gray, nil
}

// CheckFormat reports whether Encode can write the named format.
func CheckFormat(format string) error {
	switch format {
	case "png", "bmp", "tiff":
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// Encode writes img in the named format: "png", "bmp" or "tiff".
func Encode(w io.Writer, img *image.Gray, format string) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	switch format {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
}

// FormatForPath picks the output format from the file extension; anything
// unrecognized is written as PNG.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	default:
		return "png"
	}
}

// SaveGray writes img to path in the format implied by its extension.
func SaveGray(path string, img *image.Gray) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	if err := Encode(f, img, FormatForPath(path)); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
