// Package render executes geometric plans and serializes the result.
// Resampling uses Lanczos throughout: batch throughput matters less than
// perceptual quality on the fixed downstream display.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"

	"framefit/internal/compose"
)

// Apply resamples src according to plan and returns a bitmap of exactly
// plan.TargetW x plan.TargetH. Fit plans paste onto a background-filled
// canvas; crop plans copy the centered sub-rectangle, leaving no
// background pixels.
func Apply(src image.Image, plan compose.Plan, bg color.NRGBA) *image.NRGBA {
	scaled := imaging.Resize(src, plan.ScaledW, plan.ScaledH, imaging.Lanczos)

	switch plan.Mode {
	case compose.ModeCrop:
		rect := image.Rect(plan.OffsetX, plan.OffsetY, plan.OffsetX+plan.TargetW, plan.OffsetY+plan.TargetH)
		return imaging.Crop(scaled, rect)
	default:
		canvas := imaging.New(plan.TargetW, plan.TargetH, bg)
		return imaging.Paste(canvas, scaled, image.Pt(plan.OffsetX, plan.OffsetY))
	}
}

// EncodeJPEG writes img as a baseline JPEG at the given quality (50-100).
// Chroma subsampling is left at the codec default and no metadata
// segments are written.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality < 50 || quality > 100 {
		return fmt.Errorf("jpeg quality %d out of range [50,100]", quality)
	}
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
