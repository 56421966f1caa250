package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"framefit/internal/compose"
)

func TestDefaultsValidate(t *testing.T) {
	cfg, err := Defaults().Pipeline()
	if err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 480 || cfg.Quality != 95 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Mode != compose.ModeAuto {
		t.Fatalf("default mode should be auto")
	}
	if cfg.Background != (color.NRGBA{A: 0xff}) {
		t.Fatalf("default background should be black, got %+v", cfg.Background)
	}
}

func TestValidationRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"width too small", func(s *Settings) { s.Width = 50 }},
		{"width too large", func(s *Settings) { s.Width = 5000 }},
		{"height too small", func(s *Settings) { s.Height = 99 }},
		{"quality too low", func(s *Settings) { s.Quality = 30 }},
		{"quality too high", func(s *Settings) { s.Quality = 101 }},
		{"bad mode", func(s *Settings) { s.Mode = "stretch" }},
		{"bad background", func(s *Settings) { s.Background = "reddish" }},
		{"negative workers", func(s *Settings) { s.Workers = -1 }},
		{"threshold out of range", func(s *Settings) { s.AutoThreshold = 1.5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			tc.mutate(&s)
			if _, err := s.Pipeline(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#000000":     {A: 0xff},
		"#ffffff":     {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		"#1a2B3c":     {R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff},
		"0,0,0":       {A: 0xff},
		"255, 128, 0": {R: 255, G: 128, A: 0xff},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", in, got, want)
		}
	}

	for _, in := range []string{"", "#fff", "#zzzzzz", "1,2", "300,0,0", "a,b,c"} {
		if _, err := ParseColor(in); err == nil {
			t.Fatalf("ParseColor(%q): expected error", in)
		}
	}
}

func TestLoadProfileAndEnv(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	data := []byte("width: 480\nheight: 800\nquality: 90\nmode: crop\nsuffix: _frame\n")
	if err := os.WriteFile(profile, data, 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	t.Setenv("FRAMEFIT_QUALITY", "85")
	t.Setenv("FRAMEFIT_OVERWRITE", "true")

	s, err := Load(profile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if s.Width != 480 || s.Height != 800 {
		t.Fatalf("profile dimensions not applied: %+v", s)
	}
	if s.Mode != "crop" || s.Suffix != "_frame" {
		t.Fatalf("profile fields not applied: %+v", s)
	}
	// Environment wins over the profile.
	if s.Quality != 85 {
		t.Fatalf("env quality override not applied, got %d", s.Quality)
	}
	if !s.Overwrite {
		t.Fatal("env overwrite override not applied")
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("FRAMEFIT_WIDTH", "wide")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric FRAMEFIT_WIDTH")
	}
}
