// internal/imaging/imaging.go

// Package imaging validates and normalizes source photos before they enter
// the enrichment pipeline.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const jpegQuality = 90

// Normalize decodes a source image, flattens it to RGB, bounds it to
// maxDimension on its longest side and re-encodes it as JPEG. It returns
// the encoded bytes and the output MIME type. A source that cannot be
// decoded is not retryable.
func Normalize(data []byte, maxDimension int) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, "", fmt.Errorf("image has empty bounds %dx%d", width, height)
	}

	outWidth, outHeight := width, height
	if maxDimension > 0 && (width > maxDimension || height > maxDimension) {
		if width >= height {
			outWidth = maxDimension
			outHeight = height * maxDimension / width
		} else {
			outHeight = maxDimension
			outWidth = width * maxDimension / height
		}
		if outWidth < 1 {
			outWidth = 1
		}
		if outHeight < 1 {
			outHeight = 1
		}
	}

	// Drawing onto an RGBA canvas drops palettes and alpha before the JPEG
	// encode.
	dst := image.NewRGBA(image.Rect(0, 0, outWidth, outHeight))
	if outWidth == width && outHeight == height {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}
