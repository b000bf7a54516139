package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/droidcli/droidcli/internal/agent"
)

// commandTimeout bounds a single CLI invocation end to end.
const commandTimeout = 60 * time.Second

// newAgent builds a short-lived agent for one command invocation.
// Callers must defer a.Close().
func newAgent(cmd *cobra.Command) (*agent.Agent, error) {
	log := zap.NewNop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg := zap.NewDevelopmentConfig()
		l, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		log = l
	}
	return agent.New(agent.ConfigFromEnv(), log), nil
}

// commandContext returns the context for one CLI invocation.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), commandTimeout)
}

// deviceFlag reads the persistent --device flag through the command's merged
// flag set.
func deviceFlag(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("device")
	return id
}

// okResult is the YAML output of simple action commands.
type okResult struct {
	OK     bool   `yaml:"ok"           json:"ok"`
	Action string `yaml:"action"       json:"action"`
	X      int    `yaml:"x,omitempty"  json:"x,omitempty"`
	Y      int    `yaml:"y,omitempty"  json:"y,omitempty"`
}
