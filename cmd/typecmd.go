package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
)

// TypeResult is the YAML output of a successful type command. The typed text
// is reported as a length only; it may be a credential.
type TypeResult struct {
	OK    bool   `yaml:"ok"     json:"ok"`
	Action string `yaml:"action" json:"action"`
	Typed int    `yaml:"typed_chars" json:"typed_chars"`
}

var typeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Type text into the focused element",
	Long:  "Type text into the focused element. Text can be passed as a positional argument or via --text. Use tap first to focus a field.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().String("text", "", "Text to type (alternative to positional arg)")
	typeCmd.Flags().Bool("clear", false, "Clear the field before typing")
}

func runType(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	clear, _ := cmd.Flags().GetBool("clear")
	if len(args) > 0 {
		text = args[0]
	}
	if text == "" {
		return fmt.Errorf("specify --text or a positional text argument")
	}

	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := a.TypeText(ctx, deviceFlag(cmd), "", text, clear); err != nil {
		return err
	}
	return output.Print(TypeResult{OK: true, Action: "type", Typed: len(text)})
}
