package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "framefit",
	Short: "framefit - normalize photo collections for a fixed-resolution display",
	Long: "framefit converts mixed photo collections (JPEG/PNG/BMP/TIFF/WebP/GIF,\n" +
		"HEIF/HEIC, and camera RAW) into uniform baseline JPEGs of a fixed target\n" +
		"size, padding or cropping as needed.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger writes human-readable diagnostics to stderr so they never
// interleave with the progress view on stdout. Without --verbose only
// warnings and errors appear.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log per-file diagnostics to stderr")
}
