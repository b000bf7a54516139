package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
)

// ScreenshotResult is the YAML output of the screenshot command.
type ScreenshotResult struct {
	OK     bool   `yaml:"ok"     json:"ok"`
	Path   string `yaml:"path"   json:"path"`
	Width  int    `yaml:"width"  json:"width"`
	Height int    `yaml:"height" json:"height"`
	Bytes  int    `yaml:"bytes"  json:"bytes"`
}

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the screen as a PNG file",
	RunE:  runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().StringP("output", "o", "screenshot.png", "Output file path")
	screenshotCmd.Flags().Float64("scale", 1.0, "Downscale factor 0.1-1.0")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("output")
	scale, _ := cmd.Flags().GetFloat64("scale")

	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	shot, err := a.CaptureScreenshot(ctx, deviceFlag(cmd), scale)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, shot.PNG, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return output.Print(ScreenshotResult{
		OK:     true,
		Path:   path,
		Width:  shot.Width,
		Height: shot.Height,
		Bytes:  len(shot.PNG),
	})
}
