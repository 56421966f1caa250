// Package pipeline schedules the decode, compose, resample, and encode
// stages over a directory of source files with a bounded worker pool.
// One file's failure never aborts the batch.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"framefit/internal/capability"
	"framefit/internal/compose"
	"framefit/internal/decode"
	"framefit/internal/render"
)

type job struct {
	index int
	path  string
	need  capability.Capability
}

// Run converts every supported file in srcDir into outDir. Results are
// delivered in enumeration order inside the Report; progress events go to
// updates (which may be nil). Only directory-level faults return an
// error; per-file failures are recorded in the Report.
func Run(ctx context.Context, srcDir, outDir string, cfg Config, caps capability.Snapshot, logger zerolog.Logger, updates chan<- ProgressUpdate) (Report, error) {
	started := time.Now()
	report := Report{}

	info, err := os.Stat(srcDir)
	if err != nil {
		return report, err
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%s is not a directory", srcDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return report, fmt.Errorf("output directory: %w", err)
	}

	jobList, err := enumerate(srcDir)
	if err != nil {
		return report, err
	}

	report.Total = len(jobList)
	report.Results = make([]Result, len(jobList))

	if len(jobList) == 0 {
		report.Elapsed = time.Since(started)
		return report, nil
	}

	dec := decode.New(caps, cfg.Background, logger)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobList) {
		workers = len(jobList)
	}

	jobs := make(chan job)
	// Buffered to the batch size so workers never block on aggregation.
	results := make(chan indexedResult, len(jobList))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- indexedResult{j.index, processFile(ctx, j, outDir, cfg, caps, dec, logger)}
			}
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		processed := 0
		for res := range results {
			report.Results[res.index] = res.Result
			processed++

			switch res.Status {
			case StatusConverted:
				report.Converted++
			case StatusSkipped:
				report.Skipped++
			case StatusFailed:
				report.Failed++
			}

			if updates != nil {
				updates <- ProgressUpdate{Processed: processed, Total: report.Total, Last: res.Result}
			}
		}
	}()

	for _, j := range jobList {
		jobs <- j
	}
	close(jobs)

	wg.Wait()
	close(results)
	<-collectorDone

	report.Elapsed = time.Since(started)
	return report, nil
}

type indexedResult struct {
	index int
	Result
}

// enumerate lists srcDir non-recursively, keeps files whose extension
// maps to a known capability, and orders them by name.
func enumerate(srcDir string) ([]job, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, err
	}

	jobs := make([]job, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		need := capability.ForExtension(filepath.Ext(entry.Name()))
		if need == capability.None {
			continue
		}
		jobs = append(jobs, job{path: filepath.Join(srcDir, entry.Name()), need: need})
	}

	sort.Slice(jobs, func(i, k int) bool { return jobs[i].path < jobs[k].path })
	for i := range jobs {
		jobs[i].index = i
	}
	return jobs, nil
}

// OutputName derives the destination filename for a source path: input
// stem plus the configured suffix plus ".jpg".
func OutputName(path, suffix string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + suffix + ".jpg"
}

// processFile runs the full per-file state machine: skip checks, then
// decode, plan, resample, encode. Every failure comes back as a Result,
// never a panic.
func processFile(ctx context.Context, j job, outDir string, cfg Config, caps capability.Snapshot, dec *decode.Decoder, logger zerolog.Logger) Result {
	res := Result{Path: j.path}
	started := time.Now()

	// Cancellation is cooperative and file-granular: in-flight files run
	// to completion, unstarted ones are skipped.
	if ctx != nil && ctx.Err() != nil {
		res.Status = StatusSkipped
		res.Reason = ReasonCancelled
		return res
	}

	if !caps.Available(j.need) {
		res.Status = StatusSkipped
		res.Reason = ReasonUnavailable
		return res
	}

	outPath := filepath.Join(outDir, OutputName(j.path, cfg.Suffix))
	if !cfg.Overwrite {
		if _, err := os.Stat(outPath); err == nil {
			res.Status = StatusSkipped
			res.Reason = ReasonAlreadyExists
			return res
		}
	}

	img, err := dec.Decode(ctx, j.path, j.need)
	if err != nil {
		logger.Warn().Str("path", j.path).Err(err).Msg("decode failed")
		return failed(res, started, err)
	}

	bounds := img.Bounds()
	plan, err := compose.PlanFor(bounds.Dx(), bounds.Dy(), cfg.target())
	if err != nil {
		return failed(res, started, fmt.Errorf("plan %s: %w", j.path, err))
	}

	final := render.Apply(img, plan, cfg.Background)

	if err := writeJPEG(outPath, final, cfg.Quality); err != nil {
		logger.Warn().Str("path", j.path).Err(err).Msg("encode failed")
		return failed(res, started, err)
	}

	res.Status = StatusConverted
	res.Output = outPath
	res.Elapsed = time.Since(started)
	logger.Debug().
		Str("path", j.path).
		Str("output", outPath).
		Str("mode", plan.Mode.String()).
		Dur("elapsed", res.Elapsed).
		Msg("converted")
	return res
}

func failed(res Result, started time.Time, err error) Result {
	res.Status = StatusFailed
	res.Err = err
	res.Elapsed = time.Since(started)
	return res
}

// writeJPEG encodes to a temp file in the destination directory and
// renames it into place, so readers never observe a partial output.
func writeJPEG(outPath string, img image.Image, quality int) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), "framefit-*.tmp")
	if err != nil {
		return fmt.Errorf("encode %s: %w", outPath, err)
	}
	defer os.Remove(tmpFile.Name())

	if err := render.EncodeJPEG(tmpFile, img, quality); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("encode %s: %w", outPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("encode %s: %w", outPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", outPath, err)
	}

	if err := replaceFile(tmpFile.Name(), outPath); err != nil {
		return fmt.Errorf("encode %s: %w", outPath, err)
	}
	return nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
