package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"folio_tracker/internal/app"
	"folio_tracker/internal/config"
	"folio_tracker/internal/logging"
)

// cli holds the state shared by every command.
type cli struct {
	app *app.App

	dbPath   string
	logLevel string
	jsonOut  bool
	plain    bool
	width    int
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}
	root := &cobra.Command{
		Use:           "folio",
		Short:         "Track equities, bullion and cash against live quotes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.openApp()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&c.dbPath, "db", "", "database path (default from DB_PATH)")
	f.StringVar(&c.logLevel, "log-level", "warn", "log level")
	f.BoolVar(&c.jsonOut, "json", false, "print JSON instead of a report")
	f.BoolVar(&c.plain, "plain", false, "print markdown without terminal styling")
	f.IntVar(&c.width, "width", 120, "word wrap width of rendered reports")

	root.AddCommand(
		c.summaryCmd(),
		c.rsiCmd(),
		c.equityCmd(),
		c.bullionCmd(),
		c.cashCmd(),
		c.apiCmd(),
		c.prefsCmd(),
		c.symbolsCmd(),
		c.historyCmd(),
	)
	return root, c
}

func (c *cli) openApp() error {
	cfg := config.New()
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	logger, err := logging.New(cfg.Env, c.logLevel)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) closeApp() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app.Logger.Sync()
	c.app = nil
	return err
}

// print writes v as indented JSON with --json, otherwise renders md.
func (c *cli) print(w io.Writer, v any, md string) error {
	if c.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return c.render(w, md)
}

// render prints markdown, styled for the terminal unless --plain.
func (c *cli) render(w io.Writer, md string) error {
	if c.plain {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(c.width),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
