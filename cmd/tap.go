package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/agent"
	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/ref"
)

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Tap at coordinates or on an element found by text",
	Long:  "Tap at absolute screen coordinates, or snapshot the UI and tap the center of the first element matching --text / --resource-id.",
	RunE:  runTap,
}

func init() {
	rootCmd.AddCommand(tapCmd)
	tapCmd.Flags().Int("x", -1, "Tap at absolute X coordinate")
	tapCmd.Flags().Int("y", -1, "Tap at absolute Y coordinate")
	tapCmd.Flags().String("text", "", "Find element by exact text and tap its center")
	tapCmd.Flags().String("contains", "", "Find element by text substring and tap its center")
	tapCmd.Flags().String("resource-id", "", "Find element by resource ID and tap its center")
	tapCmd.Flags().Bool("long", false, "Long-press instead of tap")
	tapCmd.Flags().Int("duration", 1000, "Long-press duration in ms (with --long)")
}

func runTap(cmd *cobra.Command, args []string) error {
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	long, _ := cmd.Flags().GetBool("long")
	duration, _ := cmd.Flags().GetInt("duration")

	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	deviceID := deviceFlag(cmd)
	if x < 0 || y < 0 {
		criteria := tapCriteria(cmd)
		if criteria.IsZero() {
			return fmt.Errorf("specify --x and --y, or one of --text, --contains, --resource-id")
		}
		x, y, err = locateElement(ctx, a, deviceID, criteria)
		if err != nil {
			return err
		}
	}

	action := "tap"
	if long {
		action = "long_press"
		_, _, err = a.LongPress(ctx, deviceID, "", x, y, duration, true)
	} else {
		_, _, err = a.Tap(ctx, deviceID, "", x, y, true)
	}
	if err != nil {
		return err
	}
	return output.Print(okResult{OK: true, Action: action, X: x, Y: y})
}

func tapCriteria(cmd *cobra.Command) ref.Criteria {
	var criteria ref.Criteria
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		criteria.Text = &text
	}
	if contains, _ := cmd.Flags().GetString("contains"); contains != "" {
		criteria.TextContains = &contains
	}
	if rid, _ := cmd.Flags().GetString("resource-id"); rid != "" {
		criteria.ResourceID = &rid
	}
	return criteria
}

// locateElement snapshots the UI and returns the center of the first match.
func locateElement(ctx context.Context, a *agent.Agent, deviceID string, criteria ref.Criteria) (int, int, error) {
	snap, err := a.CaptureSnapshot(ctx, deviceID)
	if err != nil {
		return 0, 0, err
	}
	found := snap.Find(criteria)
	if len(found) == 0 {
		return 0, 0, fmt.Errorf("no element matches the given criteria")
	}
	x, y := found[0].Center()
	return x, y, nil
}
