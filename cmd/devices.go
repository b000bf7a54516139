package cmd

import (
	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/device"
	"github.com/droidcli/droidcli/internal/output"
)

// DevicesResult is the YAML output of the devices command.
type DevicesResult struct {
	Devices []DeviceEntry `yaml:"devices" json:"devices"`
	Count   int           `yaml:"count"   json:"count"`
}

// DeviceEntry is one row in DevicesResult.
type DeviceEntry struct {
	Serial    string `yaml:"serial"              json:"serial"`
	State     string `yaml:"state"               json:"state"`
	Model     string `yaml:"model,omitempty"     json:"model,omitempty"`
	Product   string `yaml:"product,omitempty"   json:"product,omitempty"`
	Available bool   `yaml:"available"           json:"available"`
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List connected Android devices",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	infos := a.Devices.Devices(ctx)
	result := DevicesResult{Count: len(infos), Devices: make([]DeviceEntry, 0, len(infos))}
	for _, info := range infos {
		result.Devices = append(result.Devices, deviceEntry(info))
	}
	return output.Print(result)
}

func deviceEntry(info device.Info) DeviceEntry {
	return DeviceEntry{
		Serial:    info.Serial,
		State:     info.State,
		Model:     info.Model,
		Product:   info.Product,
		Available: info.Available(),
	}
}
