package decode

import (
	"bytes"
	"context"
	"image"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/image/tiff"

	"framefit/pkg/imgutil"
)

// decodeRAW demosaics a camera RAW file with the dcraw-compatible CLI
// probed at startup: AHD demosaic (-q 3), camera white balance (-w),
// sRGB output (-o 1), 8 bits per channel, TIFF on stdout.
func (d *Decoder) decodeRAW(ctx context.Context, path string) (*image.NRGBA, error) {
	if d.caps.RAWTool == "" {
		return nil, &Error{Path: path, Msg: "raw decoder unavailable"}
	}

	args := []string{"-c", "-w", "-q", "3", "-o", "1", "-T", path}
	if filepath.Base(d.caps.RAWTool) == "dcraw_emu" {
		// libraw's dcraw_emu spells "write to stdout" differently.
		args = []string{"-w", "-q", "3", "-o", "1", "-T", "-Z", "-", path}
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, d.caps.RAWTool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, &Error{Path: path, Msg: "raw demosaic: " + firstLine(stderr.Bytes()), Err: err}
	}
	d.logger.Debug().Str("path", path).Dur("elapsed", time.Since(start)).Msg("raw demosaiced")

	img, err := tiff.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, &Error{Path: path, Msg: "raw intermediate", Err: err}
	}

	return imgutil.FlattenRGB(img, d.background), nil
}
