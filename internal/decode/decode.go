// Package decode turns source files of any supported format into
// canonical 8-bit RGB bitmaps.
package decode

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	// Raster formats beyond the stdlib trio register themselves with
	// image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"framefit/internal/capability"
	"framefit/pkg/imgutil"
)

// Error is a structured decode failure. It never propagates as a panic;
// the batch marks the file failed and moves on.
type Error struct {
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Path, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Decoder produces canonical bitmaps from source files. It carries the
// capability snapshot probed at startup and the background color used to
// flatten transparency.
type Decoder struct {
	caps       capability.Snapshot
	background color.NRGBA
	logger     zerolog.Logger
}

func New(caps capability.Snapshot, background color.NRGBA, logger zerolog.Logger) *Decoder {
	return &Decoder{caps: caps, background: background, logger: logger}
}

// Decode reads path with the decoder backend its capability requires and
// returns an 8-bit NRGBA bitmap with alpha flattened onto the configured
// background.
func (d *Decoder) Decode(ctx context.Context, path string, need capability.Capability) (*image.NRGBA, error) {
	switch need {
	case capability.Raster:
		return d.decodeRaster(path)
	case capability.HEIF:
		return d.decodeHEIF(ctx, path)
	case capability.RAW:
		return d.decodeRAW(ctx, path)
	default:
		return nil, &Error{Path: path, Msg: "no decoder for this file type"}
	}
}

func (d *Decoder) decodeRaster(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Msg: "open", Err: err}
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, &Error{Path: path, Msg: "unreadable image data", Err: err}
	}

	bitmap := imgutil.FlattenRGB(img, d.background)

	// Phone and camera JPEG/TIFF usually record orientation instead of
	// rotating pixels; normalize it here since the output carries no EXIF.
	if format == "jpeg" || format == "tiff" {
		if orientation := imgutil.ReadOrientation(file); orientation != 1 {
			d.logger.Debug().Str("path", path).Int("orientation", orientation).Msg("applying exif orientation")
			bitmap = imgutil.ApplyOrientation(bitmap, orientation)
		}
	}

	return bitmap, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
