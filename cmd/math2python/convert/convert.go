package convertcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/math2python/cmd/math2python/cmdconfig"
	"github.com/papercomputeco/math2python/pkg/conversion"
	"github.com/papercomputeco/math2python/pkg/render"
)

const convertLongDesc string = `Convert a single equation and print the result.

The equation may be given as several arguments; they are joined with spaces.
Output is rendered markdown on a terminal, plain text when piped, or the raw
response with --json.

Examples:
  math2python convert '\min_x \frac{1}{2}\|Ax - b\|_2^2 + \lambda \|x\|_1'
  math2python convert --json 'minimize x^2 + 2x' | jq .numpy`

const convertShortDesc string = "Convert one equation"

type convertCommander struct {
	opts      cmdconfig.Options
	framework string
	jsonOut   bool
	plain     bool
	width     int
}

func NewConvertCmd() *cobra.Command {
	cmder := &convertCommander{}

	cmd := &cobra.Command{
		Use:   "convert <equation...>",
		Short: convertShortDesc,
		Long:  convertLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmder.opts.AddFlags(cmd)
	cmd.Flags().StringVarP(&cmder.framework, "framework", "f", conversion.DefaultFramework, "Target framework hint")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the raw JSON response")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Disable colors and markdown styling")
	cmd.Flags().IntVar(&cmder.width, "width", 0, "Word wrap width (default 100)")

	return cmd
}

func (c *convertCommander) run(ctx context.Context, cmd *cobra.Command, equation string) error {
	req := &conversion.Request{Equation: equation, Framework: c.framework}
	if err := req.Validate(); err != nil {
		return err
	}
	req.Normalize()

	cfg, err := c.opts.Load()
	if err != nil {
		return err
	}

	// stdout carries the result
	logger := cmdconfig.NewLogger(cfg, cmd.ErrOrStderr())
	defer logger.Sync()

	conv := cmdconfig.NewService(cfg, logger).Convert(ctx, req)
	if conv.Source != conversion.SourceLLM {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: upstream call failed (%v), showing %s response\n", conv.Err, conv.Source)
	}

	out := cmd.OutOrStdout()
	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(conv.Response)
	}

	return render.Conversion(out, req.Equation, conv.Response, render.Options{
		Plain: c.plain || !isTerminal(out),
		Width: c.width,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
