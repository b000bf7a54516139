package cmd

import (
	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
)

// InfoResult is the YAML output of the info command.
type InfoResult struct {
	Serial         string `yaml:"serial"                    json:"serial"`
	Model          string `yaml:"model,omitempty"           json:"model,omitempty"`
	AndroidVersion string `yaml:"android_version,omitempty" json:"android_version,omitempty"`
	SDKVersion     string `yaml:"sdk_version,omitempty"     json:"sdk_version,omitempty"`
	ScreenWidth    int    `yaml:"screen_width"              json:"screen_width"`
	ScreenHeight   int    `yaml:"screen_height"             json:"screen_height"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device identity and screen size",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	info, width, height, err := a.DeviceInfo(ctx, deviceFlag(cmd))
	if err != nil {
		return err
	}
	return output.Print(InfoResult{
		Serial:         info.Serial,
		Model:          info.Model,
		AndroidVersion: info.AndroidVersion,
		SDKVersion:     info.SDKVersion,
		ScreenWidth:    width,
		ScreenHeight:   height,
	})
}
