package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"framefit/internal/capability"
	"framefit/internal/tui"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Show supported extensions and decoder availability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		caps := capability.Probe()

		for _, ext := range capability.Extensions() {
			c := capability.ForExtension(ext)
			status := availableStyle.Render("available")
			if !caps.Available(c) {
				status = unavailableStyle.Render("unavailable")
			}
			fmt.Fprintf(os.Stdout, "  %s %s %s\n",
				extStyle.Render(padRight(ext, 6)),
				capStyle.Render(padRight(c.String(), 7)),
				status,
			)
		}

		fmt.Fprintln(os.Stdout)
		if caps.HEIFTool != "" {
			fmt.Fprintf(os.Stdout, "HEIF decoder: %s\n", caps.HEIFTool)
		} else {
			fmt.Fprintln(os.Stdout, "HEIF decoder: not found (install libheif's heif-dec or heif-convert)")
		}
		if caps.RAWTool != "" {
			fmt.Fprintf(os.Stdout, "RAW decoder:  %s\n", caps.RAWTool)
		} else {
			fmt.Fprintln(os.Stdout, "RAW decoder:  not found (install dcraw or libraw's dcraw_emu)")
		}

		return nil
	},
}

func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}

var (
	extStyle         = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	capStyle         = lipgloss.NewStyle().Foreground(tui.ColorDim)
	availableStyle   = lipgloss.NewStyle().Foreground(tui.ColorSuccess)
	unavailableStyle = lipgloss.NewStyle().Foreground(tui.ColorWarn)
)

func init() {
	rootCmd.AddCommand(formatsCmd)
}
