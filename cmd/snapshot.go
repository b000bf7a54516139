package cmd

import (
	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture the UI hierarchy with element refs",
	Long:  "Capture the current UI hierarchy. Elements get refs (e0, e1, ...) that tap/type commands accept until the next snapshot replaces them.",
	RunE:  runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	snap, err := a.CaptureSnapshot(ctx, deviceFlag(cmd))
	if err != nil {
		return err
	}
	return output.Print(output.NewSnapshotResult(snap))
}
