package decode

import (
	"context"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"framefit/pkg/imgutil"
)

// decodeHEIF converts a HEIF/HEIC file to PNG with the libheif CLI
// decoder and reads the intermediate back in. The tool path was probed at
// startup; rotation metadata is applied by the tool itself.
func (d *Decoder) decodeHEIF(ctx context.Context, path string) (*image.NRGBA, error) {
	if d.caps.HEIFTool == "" {
		return nil, &Error{Path: path, Msg: "heif decoder unavailable"}
	}

	tmpDir, err := os.MkdirTemp("", "framefit-heif-*")
	if err != nil {
		return nil, &Error{Path: path, Msg: "temp dir", Err: err}
	}
	defer os.RemoveAll(tmpDir)

	intermediate := filepath.Join(tmpDir, stem(path)+".png")

	start := time.Now()
	cmd := exec.CommandContext(ctx, d.caps.HEIFTool, path, intermediate)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &Error{Path: path, Msg: "heif decode: " + firstLine(out), Err: err}
	}
	d.logger.Debug().Str("path", path).Dur("elapsed", time.Since(start)).Msg("heif decoded")

	file, err := os.Open(intermediate)
	if err != nil {
		return nil, &Error{Path: path, Msg: "heif intermediate", Err: err}
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &Error{Path: path, Msg: "heif intermediate", Err: err}
	}

	return imgutil.FlattenRGB(img, d.background), nil
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' || b == '\r' {
			return string(out[:i])
		}
	}
	return string(out)
}
