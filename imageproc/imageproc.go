// Package imageproc prepares uploaded photos for vision analysis: EXIF
// orientation is baked into the pixels, oversized photos are downscaled,
// and any camera-reported GPS coordinate is extracted as a prompt hint.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const (
	maxDimension = 1024
	jpegQuality  = 85
)

// Orientation reads the EXIF orientation tag. Returns 1 (upright) when the
// data carries no EXIF block or the tag is absent.
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// GPSHint extracts the camera-reported coordinate as a prompt line. Returns
// "" when the photo has no usable GPS EXIF data.
func GPSHint(data []byte) string {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("The camera recorded GPS coordinates %.6f, %.6f for this photo. Use them to confirm or refine the location.", lat, lon)
}

// applyOrientation rewrites the pixels so the image displays upright
// regardless of how the camera was held.
func applyOrientation(img image.Image, orientation int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	set := func(dst *image.RGBA, fn func(x, y int) (int, int)) image.Image {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dx, dy := fn(x, y)
				dst.Set(dx, dy, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return dst
	}

	switch orientation {
	case 2: // mirrored
		return set(image.NewRGBA(image.Rect(0, 0, w, h)), func(x, y int) (int, int) { return w - 1 - x, y })
	case 3: // upside down
		return set(image.NewRGBA(image.Rect(0, 0, w, h)), func(x, y int) (int, int) { return w - 1 - x, h - 1 - y })
	case 4: // flipped vertically
		return set(image.NewRGBA(image.Rect(0, 0, w, h)), func(x, y int) (int, int) { return x, h - 1 - y })
	case 5: // transposed
		return set(image.NewRGBA(image.Rect(0, 0, h, w)), func(x, y int) (int, int) { return y, x })
	case 6: // rotated 90 CCW
		return set(image.NewRGBA(image.Rect(0, 0, h, w)), func(x, y int) (int, int) { return h - 1 - y, x })
	case 7: // transversed
		return set(image.NewRGBA(image.Rect(0, 0, h, w)), func(x, y int) (int, int) { return h - 1 - y, w - 1 - x })
	case 8: // rotated 90 CW
		return set(image.NewRGBA(image.Rect(0, 0, h, w)), func(x, y int) (int, int) { return y, w - 1 - x })
	default:
		return img
	}
}

// Normalize returns the photo ready for the vision model: orientation
// corrected and the longest side capped at 1024 pixels, re-encoded as JPEG.
// Formats Go cannot decode (HEIC and HEIF) pass through unchanged; the
// providers accept them natively. The returned mime type reflects any
// re-encoding.
func Normalize(data []byte, mimeType string) ([]byte, string, error) {
	if mimeType == "image/heic" || mimeType == "image/heif" {
		return data, mimeType, nil
	}

	orientation := Orientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	if orientation != 1 {
		img = applyOrientation(img, orientation)
		log.Infof("applied orientation correction: %d", orientation)
	}

	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if orientation == 1 && w <= maxDimension && h <= maxDimension {
		return data, mimeType, nil
	}

	nw, nh := w, h
	if w > maxDimension || h > maxDimension {
		scale := float64(maxDimension) / float64(w)
		if s := float64(maxDimension) / float64(h); s < scale {
			scale = s
		}
		nw = int(float64(w) * scale)
		nh = int(float64(h) * scale)
		if nw > maxDimension {
			nw = maxDimension
		}
		if nh > maxDimension {
			nh = maxDimension
		}
	}

	scaled := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	log.Infof("image normalized: %d bytes -> %d bytes (%dx%d -> %dx%d, orientation: %d)",
		len(data), buf.Len(), w, h, nw, nh, orientation)

	return buf.Bytes(), "image/jpeg", nil
}
