package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
)

var keyCmd = &cobra.Command{
	Use:   "key <name>",
	Short: "Press a named key",
	Long:  "Press a named key: home, back, enter, delete, volume_up, power, ... or any KEYCODE_* constant.",
	Args:  cobra.ExactArgs(1),
	RunE:  runKey,
}

func init() {
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	key := args[0]
	if key == "" {
		return fmt.Errorf("key name must not be empty")
	}

	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := a.PressKey(ctx, deviceFlag(cmd), key); err != nil {
		return err
	}
	return output.Print(okResult{OK: true, Action: "key"})
}
