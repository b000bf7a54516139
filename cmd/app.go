package cmd

import (
	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
)

// AppResult is the YAML output of the app current subcommand.
type AppResult struct {
	Package  string `yaml:"package"            json:"package"`
	Activity string `yaml:"activity,omitempty" json:"activity,omitempty"`
}

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Start, stop, and inspect apps",
}

var appStartCmd = &cobra.Command{
	Use:   "start <package>",
	Short: "Launch an app by package name",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppStart,
}

var appStopCmd = &cobra.Command{
	Use:   "stop <package>",
	Short: "Force-stop an app",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppStop,
}

var appCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the foreground package and activity",
	RunE:  runAppCurrent,
}

func init() {
	rootCmd.AddCommand(appCmd)
	appCmd.AddCommand(appStartCmd, appStopCmd, appCurrentCmd)
	appStartCmd.Flags().String("activity", "", "Explicit activity to start")
}

func runAppStart(cmd *cobra.Command, args []string) error {
	activity, _ := cmd.Flags().GetString("activity")

	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := a.AppStart(ctx, deviceFlag(cmd), args[0], activity); err != nil {
		return err
	}
	return output.Print(okResult{OK: true, Action: "app_start"})
}

func runAppStop(cmd *cobra.Command, args []string) error {
	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := a.AppStop(ctx, deviceFlag(cmd), args[0]); err != nil {
		return err
	}
	return output.Print(okResult{OK: true, Action: "app_stop"})
}

func runAppCurrent(cmd *cobra.Command, args []string) error {
	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	pkg, activity, err := a.CurrentApp(ctx, deviceFlag(cmd))
	if err != nil {
		return err
	}
	return output.Print(AppResult{Package: pkg, Activity: activity})
}
