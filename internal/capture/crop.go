package capture

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Viewport positions a source image inside a fixed 1:1 frame. Zoom scales the
// image beyond cover fit, the offsets pan it, both in output pixels. This is
// the pre-upload crop flow, independent of the happy/sad capture pipeline.
type Viewport struct {
	Size    int
	Zoom    float64
	OffsetX int
	OffsetY int
}

// Crop produces the square raster the viewport shows.
func (v Viewport) Crop(src image.Image) (*image.RGBA, error) {
	if v.Size <= 0 {
		return nil, fmt.Errorf("viewport size must be positive, got %d", v.Size)
	}

	zoom := v.Zoom
	if zoom < 1 {
		zoom = 1
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty source image")
	}

	// scale so the shorter edge covers the frame, then apply zoom
	shorter := b.Dx()
	if b.Dy() < shorter {
		shorter = b.Dy()
	}
	scale := float64(v.Size) / float64(shorter) * zoom

	w := int(float64(b.Dx())*scale + 0.5)
	h := int(float64(b.Dy())*scale + 0.5)

	x0 := (v.Size-w)/2 + v.OffsetX
	y0 := (v.Size-h)/2 + v.OffsetY

	dst := image.NewRGBA(image.Rect(0, 0, v.Size, v.Size))
	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), src, b, draw.Src, nil)

	return dst, nil
}
