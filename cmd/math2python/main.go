package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/math2python/cmd/math2python/cmdconfig"
	convertcmder "github.com/papercomputeco/math2python/cmd/math2python/convert"
	historycmder "github.com/papercomputeco/math2python/cmd/math2python/history"
	mcpcmder "github.com/papercomputeco/math2python/cmd/math2python/mcp"
	servecmder "github.com/papercomputeco/math2python/cmd/math2python/serve"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "math2python",
		Short:        "Convert optimization equations into SymPy and NumPy code",
		Version:      cmdconfig.Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(convertcmder.NewConvertCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
