package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"framefit/internal/capability"
	"framefit/internal/config"
	"framefit/internal/pipeline"
	"framefit/internal/tui"
)

var (
	convertProfile   string
	convertOutput    string
	convertWidth     int
	convertHeight    int
	convertQuality   int
	convertMode      string
	convertBG        string
	convertOverwrite bool
	convertSuffix    string
	convertWorkers   int
	convertThreshold float64
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <source-dir>",
	Short: "Convert every supported image in a directory to target-size JPEGs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(convertProfile)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, &settings)

		cfg, err := settings.Pipeline()
		if err != nil {
			return err
		}

		logger := newLogger()
		caps := capability.Probe()
		if caps.HEIFTool == "" {
			logger.Warn().Msg("no HEIF decoder found on PATH; .heic/.heif/.hif files will be skipped")
		}
		if caps.RAWTool == "" {
			logger.Warn().Msg("no RAW decoder found on PATH; camera RAW files will be skipped")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		updates := make(chan pipeline.ProgressUpdate, 64)
		model := tui.NewModel(updates)
		program := tea.NewProgram(model)

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()

		report, err := pipeline.Run(ctx, args[0], settings.Output, cfg, caps, logger, updates)

		close(updates)
		<-uiDone
		if err != nil {
			return err
		}

		rows := []tui.SummaryRow{
			{Label: "Total files", Value: fmt.Sprintf("%d", report.Total)},
			{Label: "Converted", Value: fmt.Sprintf("%d", report.Converted)},
			{Label: "Skipped", Value: fmt.Sprintf("%d", report.Skipped)},
			{Label: "Failed", Value: fmt.Sprintf("%d", report.Failed)},
			{Label: "Elapsed", Value: report.Elapsed.Round(time.Millisecond).String()},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

		for _, res := range report.Results {
			if res.Status == pipeline.StatusFailed {
				fmt.Fprintf(os.Stdout, "failed: %s: %v\n", filepath.Base(res.Path), res.Err)
			}
		}

		if report.Converted > 0 {
			outPath := settings.Output
			if abs, absErr := filepath.Abs(settings.Output); absErr == nil {
				outPath = abs
			}
			fmt.Fprintf(os.Stdout, "Converted files written to: %s\n", outPath)
		}

		return nil
	},
}

// applyFlagOverrides lets explicitly-set flags win over the profile and
// environment.
func applyFlagOverrides(cmd *cobra.Command, s *config.Settings) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		s.Output = convertOutput
	}
	if flags.Changed("width") {
		s.Width = convertWidth
	}
	if flags.Changed("height") {
		s.Height = convertHeight
	}
	if flags.Changed("quality") {
		s.Quality = convertQuality
	}
	if flags.Changed("mode") {
		s.Mode = convertMode
	}
	if flags.Changed("background") {
		s.Background = convertBG
	}
	if flags.Changed("overwrite") {
		s.Overwrite = convertOverwrite
	}
	if flags.Changed("suffix") {
		s.Suffix = convertSuffix
	}
	if flags.Changed("workers") {
		s.Workers = convertWorkers
	}
	if flags.Changed("auto-threshold") {
		s.AutoThreshold = convertThreshold
	}
}

func init() {
	defaults := config.Defaults()
	flags := convertCmd.Flags()
	flags.StringVarP(&convertProfile, "config", "c", "", "YAML profile file (default framefit.yaml if present)")
	flags.StringVarP(&convertOutput, "output", "o", defaults.Output, "destination folder for converted JPEGs")
	flags.IntVarP(&convertWidth, "width", "W", defaults.Width, "target width in pixels (100-4000)")
	flags.IntVarP(&convertHeight, "height", "H", defaults.Height, "target height in pixels (100-4000)")
	flags.IntVarP(&convertQuality, "quality", "q", defaults.Quality, "JPEG quality (50-100)")
	flags.StringVarP(&convertMode, "mode", "m", defaults.Mode, "auto, fit, or crop")
	flags.StringVarP(&convertBG, "background", "b", defaults.Background, "padding color, #rrggbb or r,g,b")
	flags.BoolVar(&convertOverwrite, "overwrite", false, "overwrite existing output files")
	flags.StringVar(&convertSuffix, "suffix", "", "suffix appended to output filenames before .jpg")
	flags.IntVar(&convertWorkers, "workers", 0, "worker count (default: CPU cores)")
	flags.Float64Var(&convertThreshold, "auto-threshold", defaults.AutoThreshold, "aspect-ratio delta below which auto mode crops")

	rootCmd.AddCommand(convertCmd)
}
