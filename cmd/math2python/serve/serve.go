package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/math2python/api"
	"github.com/papercomputeco/math2python/cmd/math2python/cmdconfig"
	"github.com/papercomputeco/math2python/pkg/mcptool"
)

const serveLongDesc string = `Start the math2python HTTP server.

Endpoints:
  GET  /               status
  POST /convert        convert an equation
  GET  /history        recorded conversions (with --record)
  ALL  /mcp            MCP streamable HTTP endpoint (with --mcp)

Examples:
  math2python serve
  math2python serve --listen :8080 --record --db ~/.math2python/tape.db`

const serveShortDesc string = "Start the HTTP server"

type serveCommander struct {
	opts   cmdconfig.Options
	listen string
	record bool
	dbPath string
	mcp    bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmder.opts.AddFlags(cmd)
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default :8000)")
	cmd.Flags().BoolVar(&cmder.record, "record", false, "Record conversions in a Merkle DAG tape")
	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to SQLite tape database (default: in-memory)")
	cmd.Flags().BoolVar(&cmder.mcp, "mcp", false, "Mount the MCP endpoint at /mcp")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.opts.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr = c.listen
	}
	if flags.Changed("record") {
		cfg.Record.Enabled = c.record
	}
	if flags.Changed("db") {
		cfg.Record.DBPath = c.dbPath
		cfg.Record.Enabled = true
	}
	if flags.Changed("mcp") {
		cfg.MCP = c.mcp
	}

	logger := cmdconfig.NewLogger(cfg, os.Stdout)
	defer logger.Sync()

	logger.Info("math2python starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("model", cfg.LLM.Model),
		zap.String("upstream", cfg.LLM.BaseURL),
		zap.Bool("debug", cfg.Debug),
	)

	service := cmdconfig.NewService(cfg, logger)

	var opts []api.Option
	if cfg.Record.Enabled {
		storer, err := cmdconfig.OpenStorer(cfg.Record.DBPath, logger)
		if err != nil {
			return err
		}
		defer storer.Close()
		opts = append(opts, api.WithStorer(storer))
	}
	if cfg.MCP {
		mcpServer := mcptool.NewServer(service, cmdconfig.Version, logger)
		opts = append(opts, api.WithMCPHandler(mcptool.NewHTTPHandler(mcpServer)))
	}

	srv, err := api.NewServer(api.Config{
		ListenAddr:   cfg.ListenAddr,
		AllowOrigins: cfg.AllowOrigins,
	}, service, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
