package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Swipe between two points or in a named direction",
	Long:  "Swipe between explicit coordinates, or use --direction up/down/left/right for a centered swipe across half the screen.",
	RunE:  runSwipe,
}

func init() {
	rootCmd.AddCommand(swipeCmd)
	swipeCmd.Flags().Int("x1", -1, "Start X")
	swipeCmd.Flags().Int("y1", -1, "Start Y")
	swipeCmd.Flags().Int("x2", -1, "End X")
	swipeCmd.Flags().Int("y2", -1, "End Y")
	swipeCmd.Flags().String("direction", "", "Named swipe: up, down, left, right")
	swipeCmd.Flags().Int("duration", 300, "Swipe duration in ms")
}

func runSwipe(cmd *cobra.Command, args []string) error {
	x1, _ := cmd.Flags().GetInt("x1")
	y1, _ := cmd.Flags().GetInt("y1")
	x2, _ := cmd.Flags().GetInt("x2")
	y2, _ := cmd.Flags().GetInt("y2")
	direction, _ := cmd.Flags().GetString("direction")
	duration, _ := cmd.Flags().GetInt("duration")

	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	deviceID := deviceFlag(cmd)
	if direction != "" {
		_, width, height, err := a.DeviceInfo(ctx, deviceID)
		if err != nil {
			return err
		}
		x1, y1, x2, y2, err = directionalSwipe(direction, width, height)
		if err != nil {
			return err
		}
	} else if x1 < 0 || y1 < 0 || x2 < 0 || y2 < 0 {
		return fmt.Errorf("specify --x1/--y1/--x2/--y2 or --direction")
	}

	if err := a.Swipe(ctx, deviceID, x1, y1, x2, y2, duration); err != nil {
		return err
	}
	return output.Print(okResult{OK: true, Action: "swipe"})
}

// directionalSwipe maps a named direction onto a centered swipe spanning half
// the screen.
func directionalSwipe(direction string, width, height int) (x1, y1, x2, y2 int, err error) {
	cx, cy := width/2, height/2
	switch direction {
	case "up":
		return cx, height * 3 / 4, cx, height / 4, nil
	case "down":
		return cx, height / 4, cx, height * 3 / 4, nil
	case "left":
		return width * 3 / 4, cy, width / 4, cy, nil
	case "right":
		return width / 4, cy, width * 3 / 4, cy, nil
	default:
		return 0, 0, 0, 0, fmt.Errorf("unknown direction: %q (use up, down, left, right)", direction)
	}
}
