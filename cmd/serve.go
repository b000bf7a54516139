package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/droidcli/droidcli/internal/agent"
	"github.com/droidcli/droidcli/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing droidcli tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes all droidcli
operations as tools. AI agents can call tools directly without shell overhead.

Supported transports:
  stdio             Standard I/O (default, for Claude Code / MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Configuration comes from DROIDCLI_* environment variables (a .env file in
the working directory is loaded when present):
  DROIDCLI_CACHE_TTL       Device connection idle TTL in seconds (default 300)
  DROIDCLI_MAX_DEVICES     Device connection cache capacity (default 5)
  DROIDCLI_STALE_SECONDS   Snapshot staleness threshold in seconds (default 30)
  DROIDCLI_HISTORY_DEPTH   Snapshots kept per device (default 5)

Examples:
  droidcli serve
  droidcli serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	// Best effort; absence of a .env file is not an error.
	_ = godotenv.Load()

	log, err := serveLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	a := agent.New(agent.ConfigFromEnv(), log)
	defer a.Close()

	// stdout carries the stdio transport; shutdown must run even when the
	// client hangs up abruptly.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("shutting down", zap.String("signal", sig.String()))
		a.Close()
		os.Exit(0)
	}()

	srv := server.New(a, log)
	return srv.Serve(server.Config{Transport: transport, Port: port})
}

// serveLogger builds a JSON logger on stderr; stdout belongs to the MCP
// stdio transport.
func serveLogger(cmd *cobra.Command) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
