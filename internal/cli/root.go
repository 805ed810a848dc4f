// Package cli wires configuration, the SQLite store and the MCP server
// into the reminders command.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"procdexeh/reminders/internal/config"
	"procdexeh/reminders/internal/db"
	"procdexeh/reminders/internal/output"
)

type app struct {
	version string

	flagDB       string
	flagLogLevel string
	flagFormat   string

	cfg    *config.Config
	logger *slog.Logger
	format output.Format
}

func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "reminders",
		Short: "Reminder lists over MCP and the command line",
		Long: `reminders keeps reminder lists in a local SQLite database.

Run "reminders serve" to expose them as MCP tools over stdio, or use the
other commands to work with them directly.`,
		Version:           version,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&a.flagDB, "db", "", "Database path (overrides REMINDERS_DB)")
	root.PersistentFlags().StringVar(&a.flagLogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides REMINDERS_LOG_LEVEL)")
	root.PersistentFlags().StringVarP(&a.flagFormat, "format", "o", "text", "Output format: text, json or yaml")

	root.AddCommand(
		a.newServeCmd(),
		a.newShowListsCmd(),
		a.newShowCmd(),
		a.newShowAllCmd(),
		a.newAddCmd(),
		a.newCompleteCmd(true),
		a.newCompleteCmd(false),
		a.newDeleteCmd(),
		a.newEditCmd(),
		a.newNewListCmd(),
	)
	return root
}

// setup loads the environment and applies flag overrides before any
// subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.flagDB != "" {
		cfg.DBPath = a.flagDB
	}
	if a.flagLogLevel != "" {
		cfg.LogLevel = a.flagLogLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	format, err := output.ParseFormat(a.flagFormat)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.format = format
	a.logger = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

func (a *app) openStore() (*db.Store, error) {
	a.logger.Debug("opening database", "path", a.cfg.DBPath)
	return db.Open(a.cfg.DBPath, a.cfg.StoreOptions())
}

func (a *app) printer(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), a.format)
}
