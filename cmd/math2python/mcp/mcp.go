package mcpcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/math2python/cmd/math2python/cmdconfig"
	"github.com/papercomputeco/math2python/pkg/mcptool"
)

const mcpLongDesc string = `Serve the convert_equation tool over MCP on stdin/stdout.

Logs are written to stderr so stdout stays a clean protocol stream.

Example client configuration:
  {"command": "math2python", "args": ["mcp"]}`

const mcpShortDesc string = "Run an MCP server on stdio"

type mcpCommander struct {
	opts cmdconfig.Options
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmder.opts.AddFlags(cmd)

	return cmd
}

func (c *mcpCommander) run(ctx context.Context) error {
	cfg, err := c.opts.Load()
	if err != nil {
		return err
	}

	logger := cmdconfig.NewLogger(cfg, os.Stderr)
	defer logger.Sync()

	service := cmdconfig.NewService(cfg, logger)
	server := mcptool.NewServer(service, cmdconfig.Version, logger)

	logger.Info("serving MCP on stdio", zap.String("model", cfg.LLM.Model))
	if err := mcptool.RunStdio(ctx, server); err != nil {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	return nil
}
