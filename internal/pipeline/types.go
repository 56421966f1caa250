package pipeline

import (
	"image/color"
	"time"

	"framefit/internal/compose"
)

// Config is the validated per-batch processing configuration. It is
// constructed once by the configuration boundary and read-only during the
// run.
type Config struct {
	Width         int
	Height        int
	Quality       int
	Mode          compose.Mode
	AutoThreshold float64
	Background    color.NRGBA
	Overwrite     bool
	Suffix        string
	Workers       int // zero means runtime.NumCPU()
}

func (c Config) target() compose.Target {
	return compose.Target{
		Width:         c.Width,
		Height:        c.Height,
		Mode:          c.Mode,
		AutoThreshold: c.AutoThreshold,
	}
}

// Status is the terminal state of one source file.
type Status int

const (
	StatusConverted Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "converted"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Skip reasons reported in Result.Reason.
const (
	ReasonUnavailable   = "capability unavailable"
	ReasonAlreadyExists = "already exists"
	ReasonCancelled     = "cancelled"
)

// Result is the immutable outcome of one source file.
type Result struct {
	Path    string
	Output  string // set when converted
	Status  Status
	Reason  string // set when skipped
	Err     error  // set when failed
	Elapsed time.Duration
}

// Report aggregates a whole batch. Results preserve enumeration order
// regardless of completion order.
type Report struct {
	Total     int
	Converted int
	Skipped   int
	Failed    int
	Results   []Result
	Elapsed   time.Duration
}

// ProgressUpdate is emitted to the progress sink after each file reaches
// a terminal state.
type ProgressUpdate struct {
	Processed int
	Total     int
	Last      Result
}
