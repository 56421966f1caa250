package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"framefit/internal/capability"
	"framefit/internal/decode"
)

// One runs the per-file pipeline for a single source path. Watch mode
// uses it to convert files as they appear without re-enumerating the
// directory.
func One(ctx context.Context, path, outDir string, cfg Config, caps capability.Snapshot, logger zerolog.Logger) Result {
	need := capability.ForExtension(filepath.Ext(path))
	if need == capability.None {
		return Result{Path: path, Status: StatusSkipped, Reason: "unsupported extension"}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{Path: path, Status: StatusFailed, Err: err}
	}

	dec := decode.New(caps, cfg.Background, logger)
	return processFile(ctx, job{path: path, need: need}, outDir, cfg, caps, dec, logger)
}
