package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "droidcli",
	Short: "Inspect and interact with Android UI over adb",
	Long:  "A CLI tool that lets AI agents inspect and interact with Android devices: snapshot the UI hierarchy, tap elements by ref, type text, and manage apps over adb.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().StringP("device", "d", "", "Device serial (omit to use the only connected device)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log to stderr at debug level")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		if pretty, err := cmd.Flags().GetBool("pretty"); err == nil && pretty {
			output.PrettyOutput = true
		}
		return nil
	}
}
