package pipeline

import (
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"framefit/internal/capability"
	"framefit/internal/compose"
)

func testConfig() Config {
	return Config{
		Width:   800,
		Height:  480,
		Quality: 95,
		Mode:    compose.ModeFit,
	}
}

func writeJPEGFixture(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer file.Close()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
}

func runBatch(t *testing.T, srcDir, outDir string, cfg Config, caps capability.Snapshot) Report {
	t.Helper()

	report, err := Run(context.Background(), srcDir, outDir, cfg, caps, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return report
}

func TestRunMixedBatch(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	// One good JPEG, one corrupt file with a RAW extension whose
	// capability is nominally available, one HEIC without HEIF support.
	writeJPEGFixture(t, filepath.Join(srcDir, "good.jpg"), 1920, 1080)
	if err := os.WriteFile(filepath.Join(srcDir, "broken.nef"), []byte("not a raw file"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "phone.heic"), []byte("not heif either"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	// A file with no image extension must not be enumerated at all.
	if err := os.WriteFile(filepath.Join(srcDir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	caps := capability.Snapshot{RAWTool: filepath.Join(t.TempDir(), "missing-dcraw")}

	report := runBatch(t, srcDir, outDir, testConfig(), caps)

	if report.Total != 3 {
		t.Fatalf("total = %d, want 3", report.Total)
	}
	if report.Converted != 1 || report.Failed != 1 || report.Skipped != 1 {
		t.Fatalf("converted/failed/skipped = %d/%d/%d, want 1/1/1",
			report.Converted, report.Failed, report.Skipped)
	}

	// Results hold enumeration (name) order regardless of completion.
	if len(report.Results) != 3 {
		t.Fatalf("results length %d", len(report.Results))
	}
	if filepath.Base(report.Results[0].Path) != "broken.nef" ||
		filepath.Base(report.Results[1].Path) != "good.jpg" ||
		filepath.Base(report.Results[2].Path) != "phone.heic" {
		t.Fatalf("results out of enumeration order: %+v", report.Results)
	}
	if report.Results[0].Status != StatusFailed {
		t.Fatalf("broken.nef should fail, got %s", report.Results[0].Status)
	}
	if report.Results[2].Reason != ReasonUnavailable {
		t.Fatalf("phone.heic reason %q, want %q", report.Results[2].Reason, ReasonUnavailable)
	}

	out := filepath.Join(outDir, "good.jpg")
	file, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()
	decoded, err := jpeg.Decode(file)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.Bounds().Dx() != 800 || decoded.Bounds().Dy() != 480 {
		t.Fatalf("output dimensions %dx%d, want 800x480",
			decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestRunIsIdempotentWithoutOverwrite(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeJPEGFixture(t, filepath.Join(srcDir, "photo.jpg"), 640, 640)

	cfg := testConfig()

	first := runBatch(t, srcDir, outDir, cfg, capability.Snapshot{})
	if first.Converted != 1 {
		t.Fatalf("first run converted = %d, want 1", first.Converted)
	}

	second := runBatch(t, srcDir, outDir, cfg, capability.Snapshot{})
	if second.Converted != 0 {
		t.Fatalf("second run converted = %d, want 0", second.Converted)
	}
	if second.Skipped != 1 || second.Results[0].Reason != ReasonAlreadyExists {
		t.Fatalf("second run should skip as existing: %+v", second.Results[0])
	}
}

func TestRunOverwriteReconverts(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeJPEGFixture(t, filepath.Join(srcDir, "photo.jpg"), 1280, 720)

	cfg := testConfig()
	cfg.Overwrite = true

	for i := 0; i < 2; i++ {
		report := runBatch(t, srcDir, outDir, cfg, capability.Snapshot{})
		if report.Converted != 1 {
			t.Fatalf("run %d converted = %d, want 1", i+1, report.Converted)
		}
	}

	file, err := os.Open(filepath.Join(outDir, "photo.jpg"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()
	decoded, err := jpeg.Decode(file)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.Bounds().Dx() != 800 || decoded.Bounds().Dy() != 480 {
		t.Fatalf("output dimensions changed: %dx%d", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestRunCancelledContextSkipsEverything(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeJPEGFixture(t, filepath.Join(srcDir, "a.jpg"), 320, 240)
	writeJPEGFixture(t, filepath.Join(srcDir, "b.jpg"), 320, 240)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, srcDir, outDir, testConfig(), capability.Snapshot{}, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Skipped != 2 || report.Converted != 0 {
		t.Fatalf("cancelled run converted/skipped = %d/%d, want 0/2",
			report.Converted, report.Skipped)
	}
	for _, res := range report.Results {
		if res.Reason != ReasonCancelled {
			t.Fatalf("reason %q, want %q", res.Reason, ReasonCancelled)
		}
	}
}

func TestRunEmitsProgressPerFile(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeJPEGFixture(t, filepath.Join(srcDir, "a.jpg"), 320, 240)
	writeJPEGFixture(t, filepath.Join(srcDir, "b.jpg"), 320, 240)
	writeJPEGFixture(t, filepath.Join(srcDir, "c.jpg"), 320, 240)

	updates := make(chan ProgressUpdate, 16)
	_, err := Run(context.Background(), srcDir, outDir, testConfig(), capability.Snapshot{}, zerolog.Nop(), updates)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	close(updates)

	count := 0
	last := ProgressUpdate{}
	for update := range updates {
		count++
		last = update
	}
	if count != 3 {
		t.Fatalf("progress events = %d, want 3", count)
	}
	if last.Processed != 3 || last.Total != 3 {
		t.Fatalf("final progress %d/%d, want 3/3", last.Processed, last.Total)
	}
}

func TestRunSourceMustBeDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.jpg")
	writeJPEGFixture(t, file, 10, 10)

	if _, err := Run(context.Background(), file, t.TempDir(), testConfig(), capability.Snapshot{}, zerolog.Nop(), nil); err == nil {
		t.Fatal("expected error for non-directory source")
	}
	if _, err := Run(context.Background(), filepath.Join(dir, "missing"), t.TempDir(), testConfig(), capability.Snapshot{}, zerolog.Nop(), nil); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestOutputName(t *testing.T) {
	cases := []struct {
		path, suffix, want string
	}{
		{"/photos/IMG_0042.HEIC", "", "IMG_0042.jpg"},
		{"/photos/sunset.cr2", "_800x480", "sunset_800x480.jpg"},
		{"pic.jpeg", "", "pic.jpg"},
		{"archive.tar.png", "", "archive.tar.jpg"},
	}
	for _, tc := range cases {
		if got := OutputName(tc.path, tc.suffix); got != tc.want {
			t.Errorf("OutputName(%q, %q) = %q, want %q", tc.path, tc.suffix, got, tc.want)
		}
	}
}
