// Package compose computes the geometric plan for fitting a source bitmap
// onto a fixed-size target canvas. It is pure math: no pixels are touched
// here.
package compose

import (
	"fmt"
	"math"
)

// Mode selects how a source image is mapped onto the target canvas.
type Mode int

const (
	// ModeAuto picks Fit or Crop based on how close the source aspect
	// ratio is to the target aspect ratio.
	ModeAuto Mode = iota
	// ModeFit scales to contain and pads with the background color.
	ModeFit
	// ModeCrop scales to cover and crops the centered excess.
	ModeCrop
)

func (m Mode) String() string {
	switch m {
	case ModeFit:
		return "fit"
	case ModeCrop:
		return "crop"
	default:
		return "auto"
	}
}

// ParseMode parses "auto", "fit", or "crop".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto":
		return ModeAuto, nil
	case "fit":
		return ModeFit, nil
	case "crop":
		return ModeCrop, nil
	default:
		return ModeAuto, fmt.Errorf("unknown mode %q (want auto, fit, or crop)", s)
	}
}

// DefaultAutoThreshold is the aspect-ratio delta below which ModeAuto
// prefers cropping over padding.
const DefaultAutoThreshold = 0.15

// Target describes the canvas a plan must produce.
type Target struct {
	Width         int
	Height        int
	Mode          Mode
	AutoThreshold float64 // zero means DefaultAutoThreshold
}

// Plan is the resolved geometric transform. Applying it always yields a
// bitmap of exactly Target.Width x Target.Height.
type Plan struct {
	Mode    Mode // ModeFit or ModeCrop, never ModeAuto
	TargetW int
	TargetH int
	Scale   float64
	ScaledW int
	ScaledH int
	// For ModeFit, OffsetX/Y place the scaled image on the canvas.
	// For ModeCrop, they are the crop origin within the scaled image.
	OffsetX int
	OffsetY int
}

// PlanFor computes the plan for a source of srcW x srcH pixels.
func PlanFor(srcW, srcH int, t Target) (Plan, error) {
	if srcW <= 0 || srcH <= 0 {
		return Plan{}, fmt.Errorf("degenerate source dimensions %dx%d", srcW, srcH)
	}
	if t.Width <= 0 || t.Height <= 0 {
		return Plan{}, fmt.Errorf("degenerate target dimensions %dx%d", t.Width, t.Height)
	}

	mode := t.Mode
	if mode == ModeAuto {
		mode = autoMode(srcW, srcH, t)
	}

	plan := Plan{Mode: mode, TargetW: t.Width, TargetH: t.Height}

	sx := float64(t.Width) / float64(srcW)
	sy := float64(t.Height) / float64(srcH)

	switch mode {
	case ModeFit:
		plan.Scale = math.Min(sx, sy)
		plan.ScaledW = roundDim(float64(srcW) * plan.Scale)
		plan.ScaledH = roundDim(float64(srcH) * plan.Scale)
		if plan.ScaledW > t.Width {
			plan.ScaledW = t.Width
		}
		if plan.ScaledH > t.Height {
			plan.ScaledH = t.Height
		}
		plan.OffsetX = (t.Width - plan.ScaledW) / 2
		plan.OffsetY = (t.Height - plan.ScaledH) / 2
	case ModeCrop:
		plan.Scale = math.Max(sx, sy)
		plan.ScaledW = roundDim(float64(srcW) * plan.Scale)
		plan.ScaledH = roundDim(float64(srcH) * plan.Scale)
		if plan.ScaledW < t.Width {
			plan.ScaledW = t.Width
		}
		if plan.ScaledH < t.Height {
			plan.ScaledH = t.Height
		}
		plan.OffsetX = (plan.ScaledW - t.Width) / 2
		plan.OffsetY = (plan.ScaledH - t.Height) / 2
	}

	return plan, nil
}

// autoMode crops when the source aspect ratio is within the threshold of
// the target aspect ratio (padding would be barely visible anyway) and
// fits otherwise, so strongly mismatched images keep their content.
func autoMode(srcW, srcH int, t Target) Mode {
	threshold := t.AutoThreshold
	if threshold == 0 {
		threshold = DefaultAutoThreshold
	}

	srcAspect := float64(srcW) / float64(srcH)
	targetAspect := float64(t.Width) / float64(t.Height)
	delta := math.Abs(srcAspect-targetAspect) / targetAspect

	if delta <= threshold {
		return ModeCrop
	}
	return ModeFit
}

func roundDim(v float64) int {
	d := int(math.Round(v))
	if d < 1 {
		d = 1
	}
	return d
}
