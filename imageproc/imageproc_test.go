package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeSmallImagePassesThrough(t *testing.T) {
	data := encodeJPEG(t, 200, 100)

	out, mime, err := Normalize(data, "image/jpeg")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("small upright image must pass through unchanged")
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", mime)
	}
}

func TestNormalizeDownscalesLargeImage(t *testing.T) {
	data := encodeJPEG(t, 2048, 1024)

	out, mime, err := Normalize(data, "image/jpeg")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 1024 || b.Dy() != 512 {
		t.Errorf("dimensions = %dx%d, want 1024x512", b.Dx(), b.Dy())
	}
}

func TestNormalizeHEICPassesThrough(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'h', 'e', 'i', 'c'}

	out, mime, err := Normalize(data, "image/heic")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !bytes.Equal(out, data) || mime != "image/heic" {
		t.Error("HEIC payload must pass through untouched")
	}
}

func TestOrientationDefaultsToUpright(t *testing.T) {
	if o := Orientation(encodeJPEG(t, 10, 10)); o != 1 {
		t.Errorf("orientation = %d, want 1 for image without EXIF", o)
	}
}

func TestGPSHintEmptyWithoutEXIF(t *testing.T) {
	if hint := GPSHint(encodeJPEG(t, 10, 10)); hint != "" {
		t.Errorf("hint = %q, want empty for image without EXIF", hint)
	}
}
