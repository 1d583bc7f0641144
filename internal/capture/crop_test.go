package capture

import (
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestViewport_CropIsSquare(t *testing.T) {
	src := solidImage(640, 480, color.RGBA{R: 200, A: 255})

	out, err := Viewport{Size: 256}.Crop(src)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Dx() != 256 || out.Bounds().Dy() != 256 {
		t.Fatalf("bounds = %v", out.Bounds())
	}
}

func TestViewport_CoverFitFillsFrame(t *testing.T) {
	// a landscape source at cover fit leaves no blank pixels in the frame
	src := solidImage(640, 480, color.RGBA{R: 200, A: 255})

	out, err := Viewport{Size: 64}.Crop(src)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []image.Point{{0, 0}, {63, 0}, {32, 32}, {0, 63}, {63, 63}} {
		r, _, _, a := out.At(p.X, p.Y).RGBA()
		if a == 0 || r == 0 {
			t.Fatalf("blank pixel at %v", p)
		}
	}
}

func TestViewport_OffsetPansTheImage(t *testing.T) {
	src := solidImage(100, 100, color.RGBA{G: 255, A: 255})

	// panning right vacates the left edge while the right edge stays covered
	out, err := Viewport{Size: 50, OffsetX: 20}.Crop(src)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := out.At(0, 25).RGBA(); a != 0 {
		t.Fatal("left edge should be vacated after panning right")
	}
	if _, _, _, a := out.At(49, 25).RGBA(); a == 0 {
		t.Fatal("right edge should still show the image")
	}
}

func TestViewport_ZoomBelowOneIsClamped(t *testing.T) {
	src := solidImage(100, 100, color.RGBA{B: 255, A: 255})

	out, err := Viewport{Size: 50, Zoom: 0.25}.Crop(src)
	if err != nil {
		t.Fatal(err)
	}
	// clamped to cover fit, so corners are still covered
	if _, _, _, a := out.At(0, 0).RGBA(); a == 0 {
		t.Fatal("zoom below 1 must not shrink the image out of cover fit")
	}
}

func TestViewport_InvalidInputs(t *testing.T) {
	src := solidImage(10, 10, color.RGBA{A: 255})

	if _, err := (Viewport{Size: 0}).Crop(src); err == nil {
		t.Fatal("expected error for zero size")
	}
	if _, err := (Viewport{Size: 64}).Crop(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Fatal("expected error for empty source")
	}
}
