package asset

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resize scales src to exactly w x h pixels
func Resize(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
