package imagegen

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

const squareSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20" width="40" height="20">
  <rect x="0" y="0" width="40" height="20" fill="#ff0000"/>
</svg>`

func TestToPNGRasterizesSVG(t *testing.T) {
	out, err := ToPNG([]byte(squareSVG))
	if err != nil {
		t.Fatalf("to png: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("expected 40x20, got %v", b)
	}
	r, _, _, a := img.At(20, 10).RGBA()
	if r>>8 < 200 || a == 0 {
		t.Fatalf("expected red pixel, got r=%d a=%d", r>>8, a)
	}
}

func TestToPNGPassesPNGThrough(t *testing.T) {
	src := solidImage(4, 4)
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := ToPNG(buf.Bytes())
	if err != nil {
		t.Fatalf("to png: %v", err)
	}
	if !bytes.Equal(out, buf.Bytes()) {
		t.Fatalf("expected png bytes untouched")
	}
}

func TestToPNGReencodesJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solidImage(8, 6), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := ToPNG(buf.Bytes())
	if err != nil {
		t.Fatalf("to png: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestToPNGRejectsGarbage(t *testing.T) {
	if _, err := ToPNG(nil); err != ErrEmptyImage {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := ToPNG([]byte("not an image")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 120, B: 200, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(2, 2)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}
