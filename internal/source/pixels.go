package source

import (
	"image"

	"golang.org/x/image/draw"
)

// iconSize is the cached icon edge length in pixels.
const iconSize = 32

// bgraToRGBA swaps the blue and red channels in place. GDI DIB sections
// hand back BGRA; image/png wants RGBA.
func bgraToRGBA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// scaleToIconSize resizes src to the cached icon dimensions. Icons
// already at size pass through untouched.
func scaleToIconSize(src *image.NRGBA) *image.NRGBA {
	bounds := src.Bounds()
	if bounds.Dx() == iconSize && bounds.Dy() == iconSize {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
