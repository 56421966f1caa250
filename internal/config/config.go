// Package config is the settings boundary: defaults, an optional YAML
// profile, and FRAMEFIT_* environment overrides are merged and validated
// before the pipeline ever sees them.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"framefit/internal/compose"
	"framefit/internal/pipeline"
)

const (
	MinDimension = 100
	MaxDimension = 4000
	MinQuality   = 50
	MaxQuality   = 100
)

// DefaultProfile is the profile filename looked up in the working
// directory when --config is not given.
const DefaultProfile = "framefit.yaml"

// Settings is the raw, unvalidated configuration as written by users.
type Settings struct {
	Output        string  `yaml:"output"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Quality       int     `yaml:"quality"`
	Mode          string  `yaml:"mode"`
	Background    string  `yaml:"background"`
	Overwrite     bool    `yaml:"overwrite"`
	Suffix        string  `yaml:"suffix"`
	Workers       int     `yaml:"workers"`
	AutoThreshold float64 `yaml:"auto_threshold"`
}

func Defaults() Settings {
	return Settings{
		Output:        "converted",
		Width:         800,
		Height:        480,
		Quality:       95,
		Mode:          "auto",
		Background:    "#000000",
		AutoThreshold: compose.DefaultAutoThreshold,
	}
}

// Load merges defaults, the YAML profile at path (or DefaultProfile if it
// exists and path is empty), and FRAMEFIT_* environment variables, in
// that order of increasing precedence. Flag overrides happen at the
// command layer on top of this.
func Load(path string) (Settings, error) {
	// Pick up a local .env if present; absence is not an error.
	_ = godotenv.Load()

	s := Defaults()

	if path == "" {
		if _, err := os.Stat(DefaultProfile); err == nil {
			path = DefaultProfile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read profile: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse profile %s: %w", path, err)
		}
	}

	if err := s.applyEnv(); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	if v := os.Getenv("FRAMEFIT_OUTPUT"); v != "" {
		s.Output = v
	}
	if v := os.Getenv("FRAMEFIT_MODE"); v != "" {
		s.Mode = v
	}
	if v := os.Getenv("FRAMEFIT_BACKGROUND"); v != "" {
		s.Background = v
	}
	if v := os.Getenv("FRAMEFIT_SUFFIX"); v != "" {
		s.Suffix = v
	}

	for _, e := range []struct {
		key string
		dst *int
	}{
		{"FRAMEFIT_WIDTH", &s.Width},
		{"FRAMEFIT_HEIGHT", &s.Height},
		{"FRAMEFIT_QUALITY", &s.Quality},
		{"FRAMEFIT_WORKERS", &s.Workers},
	} {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	if v := os.Getenv("FRAMEFIT_OVERWRITE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FRAMEFIT_OVERWRITE: %w", err)
		}
		s.Overwrite = b
	}
	if v := os.Getenv("FRAMEFIT_AUTO_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FRAMEFIT_AUTO_THRESHOLD: %w", err)
		}
		s.AutoThreshold = f
	}
	return nil
}

// Pipeline validates the settings and builds the read-only processing
// config handed to the batch run.
func (s Settings) Pipeline() (pipeline.Config, error) {
	cfg := pipeline.Config{}

	if s.Width < MinDimension || s.Width > MaxDimension {
		return cfg, fmt.Errorf("width %d out of range [%d,%d]", s.Width, MinDimension, MaxDimension)
	}
	if s.Height < MinDimension || s.Height > MaxDimension {
		return cfg, fmt.Errorf("height %d out of range [%d,%d]", s.Height, MinDimension, MaxDimension)
	}
	if s.Quality < MinQuality || s.Quality > MaxQuality {
		return cfg, fmt.Errorf("quality %d out of range [%d,%d]", s.Quality, MinQuality, MaxQuality)
	}
	if s.AutoThreshold < 0 || s.AutoThreshold >= 1 {
		return cfg, fmt.Errorf("auto threshold %g out of range [0,1)", s.AutoThreshold)
	}
	if s.Workers < 0 {
		return cfg, fmt.Errorf("workers must not be negative")
	}

	mode, err := compose.ParseMode(s.Mode)
	if err != nil {
		return cfg, err
	}

	background, err := ParseColor(s.Background)
	if err != nil {
		return cfg, err
	}

	cfg.Width = s.Width
	cfg.Height = s.Height
	cfg.Quality = s.Quality
	cfg.Mode = mode
	cfg.AutoThreshold = s.AutoThreshold
	cfg.Background = background
	cfg.Overwrite = s.Overwrite
	cfg.Suffix = s.Suffix
	cfg.Workers = s.Workers
	return cfg, nil
}

// ParseColor accepts "#rrggbb" or "r,g,b" and returns an opaque color.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "#") {
		hex := strings.TrimPrefix(s, "#")
		if len(hex) != 6 {
			return color.NRGBA{}, fmt.Errorf("background %q: want #rrggbb", s)
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("background %q: %w", s, err)
		}
		return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color.NRGBA{}, fmt.Errorf("background %q: want #rrggbb or r,g,b", s)
	}
	var channels [3]uint8
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("background %q: channel %q out of range", s, part)
		}
		channels[i] = uint8(n)
	}
	return color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: 0xff}, nil
}
