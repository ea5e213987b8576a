package main

import (
	"encoding/csv"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Fetch quotes and print the portfolio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := c.app.Tracker
			if err := c.app.Symbols.Ensure(cmd.Context()); err != nil {
				c.app.Logger.Debug("symbol names unavailable", zap.Error(err))
			}
			if _, err := t.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refreshing quotes: %w", err)
			}
			if c.jsonOut {
				return c.print(cmd.OutOrStdout(), t.Packet(), "")
			}
			return c.render(cmd.OutOrStdout(), summaryMarkdown(t.ToStrings()))
		},
	}
}

func (c *cli) rsiCmd() *cobra.Command {
	var rows int
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "rsi SYMBOL",
		Short: "Print the 14-day Wilder RSI table of a security",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.app.RSI.View(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asCSV {
				w := csv.NewWriter(cmd.OutOrStdout())
				return w.WriteAll(v.CSVRecords())
			}
			return c.print(cmd.OutOrStdout(), v, rsiMarkdown(v, rows))
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 20, "days to show, newest first (0 for all)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write the full table as CSV")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent quote fetches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := c.app.History.Recent(limit)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), runs, historyMarkdown(runs))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of fetches to list")
	return cmd
}
