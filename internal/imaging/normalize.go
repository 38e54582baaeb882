// Package imaging post-processes rendered rasters to the exact geometry
// and color depth of a device panel.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
)

// Profile describes the target panel.
type Profile struct {
	// Color selects full-color PNG output. When false the raster is
	// quantized to Grayscale levels and encoded as BMP.
	Color bool

	// Grayscale is the panel's gray level count: 2, 4 or 16.
	Grayscale int
}

// Normalize decodes a rendered buffer, resizes it to fill exactly
// targetWidth x targetHeight, and re-encodes it for the given profile.
// The output dimensions always match the request and the buffer is never
// empty on success.
func Normalize(buf []byte, targetWidth, targetHeight int, profile Profile) ([]byte, error) {
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, fmt.Errorf("invalid target dimensions %dx%d", targetWidth, targetHeight)
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = resizeToFill(img, targetWidth, targetHeight)

	var out bytes.Buffer
	if profile.Color {
		if err := png.Encode(&out, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	} else {
		quantized := Quantize(img, profile.Grayscale)
		if err := bmp.Encode(&out, quantized); err != nil {
			return nil, fmt.Errorf("encode bmp: %w", err)
		}
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("empty output buffer")
	}

	return out.Bytes(), nil
}

// resizeToFill scales the image to cover the target rectangle and crops
// the overflow around the center. The source aspect ratio is preserved,
// the output dimensions are exact.
func resizeToFill(img image.Image, width, height int) image.Image {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW == width && srcH == height {
		return img
	}
	if srcW == 0 || srcH == 0 {
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}

	// Scale so both axes cover the target.
	scaleW := float64(width) / float64(srcW)
	scaleH := float64(height) / float64(srcH)

	var scaled image.Image
	if scaleW > scaleH {
		scaled = resize.Resize(uint(width), 0, img, resize.Lanczos3)
	} else {
		scaled = resize.Resize(0, uint(height), img, resize.Lanczos3)
	}

	sb := scaled.Bounds()
	offX := (sb.Dx() - width) / 2
	offY := (sb.Dy() - height) / 2

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), scaled, sb.Min.Add(image.Pt(offX, offY)), draw.Src)
	return out
}

// Quantize reduces an image to the given number of gray levels using
// Floyd-Steinberg error diffusion. Diffusion is deterministic: identical
// input always yields identical output, so unchanged screens re-render
// pixel-identically.
func Quantize(img image.Image, levels int) *image.Paletted {
	switch levels {
	case 2, 4, 16:
	default:
		levels = 2
	}

	out := image.NewPaletted(img.Bounds(), grayPalette(levels))
	draw.FloydSteinberg.Draw(out, img.Bounds(), img, img.Bounds().Min)
	return out
}

// grayPalette builds N evenly spaced gray levels from black to white.
func grayPalette(levels int) color.Palette {
	palette := make(color.Palette, levels)
	for i := 0; i < levels; i++ {
		v := uint8(i * 255 / (levels - 1))
		palette[i] = color.Gray{Y: v}
	}
	return palette
}
