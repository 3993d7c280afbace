package historycmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/math2python/cmd/math2python/cmdconfig"
	"github.com/papercomputeco/math2python/pkg/merkle"
)

const historyLongDesc string = `List conversions recorded in a SQLite tape.

Each line is one recorded conversion: its hash, how it was produced
(llm, demo or error), the model and the equation.

Examples:
  math2python history --db ~/.math2python/tape.db
  math2python history --config math2python.toml`

const historyShortDesc string = "List recorded conversions"

type historyCommander struct {
	opts   cmdconfig.Options
	dbPath string
	full   bool
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmder.opts.AddFlags(cmd)
	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to SQLite tape database")
	cmd.Flags().BoolVar(&cmder.full, "full", false, "Print full hashes")

	return cmd
}

func (c *historyCommander) run(ctx context.Context, cmd *cobra.Command) error {
	dbPath := c.dbPath
	if dbPath == "" {
		cfg, err := c.opts.Load()
		if err != nil {
			return err
		}
		dbPath = cfg.Record.DBPath
	}
	if dbPath == "" {
		return fmt.Errorf("no tape database given (use --db or [record] db in the config file)")
	}

	storer, err := merkle.NewSQLiteStorer(dbPath)
	if err != nil {
		return fmt.Errorf("could not open tape database %s: %w", dbPath, err)
	}
	defer storer.Close()

	leaves, err := storer.Leaves(ctx)
	if err != nil {
		return fmt.Errorf("could not list conversions: %w", err)
	}

	out := cmd.OutOrStdout()
	var count int
	for _, leaf := range leaves {
		if leaf.Content.Type != merkle.BucketConversion || leaf.ParentHash == nil {
			continue
		}

		root, err := storer.Get(ctx, *leaf.ParentHash)
		if err != nil {
			return fmt.Errorf("could not get equation for %s: %w", leaf.Hash, err)
		}

		hash := leaf.Hash
		if !c.full {
			hash = hash[:12]
		}
		fmt.Fprintf(out, "%s  %-5s  %s  %s\n", hash, leaf.Content.Source, leaf.Content.Model, oneLine(root.Content.Equation))
		count++
	}

	fmt.Fprintf(out, "%d conversions in %s\n", count, dbPath)
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
