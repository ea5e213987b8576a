package main

import (
	"github.com/spf13/cobra"

	"folio_tracker/internal/models"
	"folio_tracker/internal/secrets"
)

func (c *cli) apiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Show or set the finance API endpoints and key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Tracker.API()
			s.Key = secrets.Redact(s.Key)
			return c.print(cmd.OutOrStdout(), s, apiMarkdown(s))
		},
	}

	var s models.APISettings
	set := &cobra.Command{
		Use:   "set",
		Short: "Set finance API settings; omitted flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := c.app.Tracker.SetAPI(s)
			if err != nil {
				return err
			}
			saved.Key = secrets.Redact(saved.Key)
			return c.print(cmd.OutOrStdout(), saved, apiMarkdown(saved))
		},
	}
	set.Flags().StringVar(&s.StockURL, "stock-url", "", "quote URL, the symbol is appended")
	set.Flags().StringVar(&s.Key, "key", "", "API key sent as the token parameter")
	set.Flags().StringVar(&s.NasdaqURL, "nasdaq-url", "", "Nasdaq listed symbols file")
	set.Flags().StringVar(&s.NYSEURL, "nyse-url", "", "other listed symbols file")
	set.MarkFlagsOneRequired("stock-url", "key", "nasdaq-url", "nyse-url")
	cmd.AddCommand(set)
	return cmd
}

func (c *cli) prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or set display and refresh preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.app.Tracker.Preferences()
			return c.print(cmd.OutOrStdout(), p, prefsMarkdown(p))
		},
	}

	var in models.Preferences
	set := &cobra.Command{
		Use:   "set",
		Short: "Set preferences; omitted flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.app.Tracker.Preferences()
			f := cmd.Flags()
			if f.Changed("font") {
				p.MainFont = in.MainFont
			}
			if f.Changed("clocks") {
				p.ClocksDisplayed = in.ClocksDisplayed
			}
			if f.Changed("indices") {
				p.IndicesDisplayed = in.IndicesDisplayed
			}
			if f.Changed("decimals") {
				p.DecimalPlaces = in.DecimalPlaces
			}
			if f.Changed("updates-per-min") {
				p.UpdatesPerMin = in.UpdatesPerMin
			}
			if f.Changed("updates-hours") {
				p.UpdatesHours = in.UpdatesHours
			}
			if err := c.app.Tracker.SetPreferences(p); err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), p, prefsMarkdown(p))
		},
	}
	f := set.Flags()
	f.StringVar(&in.MainFont, "font", "", "main font")
	f.BoolVar(&in.ClocksDisplayed, "clocks", false, "show market clocks")
	f.BoolVar(&in.IndicesDisplayed, "indices", true, "show market indices")
	f.IntVar(&in.DecimalPlaces, "decimals", 2, "decimal places, 0 to 4")
	f.Float64Var(&in.UpdatesPerMin, "updates-per-min", 6, "refreshes per minute while the market is open")
	f.Float64Var(&in.UpdatesHours, "updates-hours", 1, "hours to keep refreshing after the close")
	cmd.AddCommand(set)
	return cmd
}
