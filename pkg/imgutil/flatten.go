// Package imgutil holds small bitmap helpers shared by the decode and
// render stages.
package imgutil

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

type opaquer interface {
	Opaque() bool
}

// FlattenRGB converts any decoded image to an 8-bit NRGBA bitmap with
// alpha composited onto the given background color. Palette and grayscale
// images are expanded; already-opaque images are cloned as-is.
func FlattenRGB(img image.Image, bg color.NRGBA) *image.NRGBA {
	if o, ok := img.(opaquer); ok && o.Opaque() {
		return imaging.Clone(img)
	}

	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}
