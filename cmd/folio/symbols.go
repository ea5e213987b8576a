package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"folio_tracker/internal/services"
)

func (c *cli) symbolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Search or refresh the exchange symbol directory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Download the Nasdaq and NYSE symbol directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Symbols.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d symbols\n", c.app.Symbols.Len())
			return nil
		},
	})

	var limit int
	search := &cobra.Command{
		Use:   "search KEY",
		Short: "List symbols whose ticker or name starts with KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Symbols.Ensure(cmd.Context()); err != nil {
				return err
			}
			matches := c.app.Symbols.Complete(args[0], limit)
			if matches == nil {
				matches = []services.Completion{}
			}
			return c.print(cmd.OutOrStdout(), matches, completionsMarkdown(args[0], matches))
		},
	}
	search.Flags().IntVar(&limit, "limit", 20, "maximum matches")
	cmd.AddCommand(search)
	return cmd
}
