package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"framefit/internal/capability"
	"framefit/internal/config"
	"framefit/internal/pipeline"
)

var (
	watchProfile string
	watchOutput  string
	watchSettle  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <source-dir>",
	Short: "Continuously convert images as they appear in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcDir := args[0]

		settings, err := config.Load(watchProfile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output") {
			settings.Output = watchOutput
		}
		cfg, err := settings.Pipeline()
		if err != nil {
			return err
		}
		// Reconverting on every rewrite is the point of watching.
		cfg.Overwrite = true

		logger := newLogger().Level(levelForWatch())
		caps := capability.Probe()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		if err := watcher.Add(srcDir); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger.Info().Str("source", srcDir).Str("output", settings.Output).Msg("watching")

		for {
			select {
			case <-ctx.Done():
				logger.Info().Msg("stopping")
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
					continue
				}
				if capability.ForExtension(filepath.Ext(event.Name)) == capability.None {
					continue
				}

				// Give the writer a moment to finish the file.
				time.Sleep(watchSettle)

				res := pipeline.One(ctx, event.Name, settings.Output, cfg, caps, logger)
				switch res.Status {
				case pipeline.StatusConverted:
					logger.Info().Str("path", res.Path).Str("output", res.Output).Dur("elapsed", res.Elapsed).Msg("converted")
				case pipeline.StatusSkipped:
					logger.Info().Str("path", res.Path).Str("reason", res.Reason).Msg("skipped")
				case pipeline.StatusFailed:
					logger.Error().Str("path", res.Path).Err(res.Err).Msg("failed")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Error().Err(err).Msg("watch error")
			}
		}
	},
}

// levelForWatch keeps watch mode chatty enough to be useful without
// --verbose, since there is no progress view.
func levelForWatch() zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func init() {
	defaults := config.Defaults()
	flags := watchCmd.Flags()
	flags.StringVarP(&watchProfile, "config", "c", "", "YAML profile file (default framefit.yaml if present)")
	flags.StringVarP(&watchOutput, "output", "o", defaults.Output, "destination folder for converted JPEGs")
	flags.DurationVar(&watchSettle, "settle", 500*time.Millisecond, "delay before converting a newly appeared file")

	rootCmd.AddCommand(watchCmd)
}
