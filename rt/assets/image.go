package assets

import (
	"image"

	"golang.org/x/image/draw"
)

// ToRGBA returns img as 8-bit RGBA with a zero origin and Stride == 4*width.
// Images already in that form are returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// MipLevels is the number of levels in a full chain down to 1x1.
func MipLevels(width, height int) int {
	n := 1
	for width > 1 || height > 1 {
		width = max(1, width/2)
		height = max(1, height/2)
		n++
	}
	return n
}

// MipChain returns base followed by successive half-size levels, down to 1x1.
func MipChain(base *image.RGBA) []*image.RGBA {
	levels := make([]*image.RGBA, 0, MipLevels(base.Bounds().Dx(), base.Bounds().Dy()))
	levels = append(levels, base)

	prev := base
	for prev.Bounds().Dx() > 1 || prev.Bounds().Dy() > 1 {
		w := max(1, prev.Bounds().Dx()/2)
		h := max(1, prev.Bounds().Dy()/2)
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		levels = append(levels, next)
		prev = next
	}
	return levels
}
