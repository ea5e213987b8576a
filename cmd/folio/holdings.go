package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/format"
	"folio_tracker/internal/models"
)

func (c *cli) equityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equity",
		Short: "List and edit equity holdings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := c.app.Tracker.Equities()
			return c.print(cmd.OutOrStdout(), e, equitiesMarkdown(e))
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add SYMBOL SHARES",
		Short: "Add an equity or change its share count",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !format.IsPositiveLong(args[1]) {
				return apperrors.ValidationField("shares", "shares must be a whole number >= 0")
			}
			shares, _ := strconv.ParseInt(args[1], 10, 64)
			e, err := c.app.Tracker.AddEquity(args[0], shares)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d shares\n", e.Symbol, e.Shares)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove SYMBOL",
		Aliases: []string{"rm"},
		Short:   "Remove an equity",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Tracker.RemoveEquity(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s removed\n", format.UpperCase(args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every equity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.app.Tracker.RemoveAllEquity()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d equities removed\n", n)
			return nil
		},
	})
	return cmd
}

func (c *cli) bullionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bullion",
		Short: "List and edit precious metal holdings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := c.app.Tracker.Bullion()
			return c.print(cmd.OutOrStdout(), b, bullionMarkdown(b))
		},
	}

	var ounces, premium float64
	set := &cobra.Command{
		Use:       "set METAL",
		Short:     "Set the ounces held and the premium paid per ounce",
		Args:      cobra.ExactArgs(1),
		ValidArgs: models.Metals,
		RunE: func(cmd *cobra.Command, args []string) error {
			metal := strings.ToLower(strings.TrimSpace(args[0]))
			b := models.Bullion{Metal: metal}
			for _, cur := range c.app.Tracker.Bullion() {
				if cur.Metal == metal {
					b = cur
				}
			}
			if cmd.Flags().Changed("ounces") {
				b.Ounces = ounces
			}
			if cmd.Flags().Changed("premium") {
				b.Premium = premium
			}
			if err := c.app.Tracker.SetBullion(b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %g oz, premium %g\n", b.Metal, b.Ounces, b.Premium)
			return nil
		},
	}
	set.Flags().Float64Var(&ounces, "ounces", 0, "ounces held")
	set.Flags().Float64Var(&premium, "premium", 0, "premium per ounce over spot")
	set.MarkFlagsOneRequired("ounces", "premium")
	cmd.AddCommand(set)
	return cmd
}

func (c *cli) cashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cash",
		Short: "Show or set the cash balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := c.app.Tracker.Cash()
			return c.print(cmd.OutOrStdout(), map[string]float64{"value": v},
				"Cash: "+c.app.Formatter.MustMoney(v, 2)+"\n")
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set VALUE",
		Short: `Set the cash balance, e.g. 1234.50 or "$1,234.50"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := format.ParseAmount(args[0])
			if !ok {
				return apperrors.ValidationField("value", "cash must be a number >= 0")
			}
			if err := c.app.Tracker.SetCash(v); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cash: %s\n", c.app.Formatter.MustMoney(v, 2))
			return nil
		},
	})
	return cmd
}
