// Package commands implements the sdetkit command line.
package commands

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/the-sdet/sdetkit/internal/config"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// env is shared by every subcommand once the root pre-run has loaded it.
type env struct {
	cfg     *config.Config
	envFile string
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "sdetkit",
		Short:         "Test automation helpers for APIs, databases, data files and browsers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load()
		},
	}
	root.PersistentFlags().StringVar(&e.envFile, "env-file", ".env", "dotenv file loaded over the environment")

	root.AddCommand(
		apiCmd(e),
		dbCmd(e),
		excelCmd(),
		jsonCmd(),
		xmlCmd(),
		stubCmd(e),
		webCmd(e),
		diffCmd(),
	)
	return root
}

func (e *env) load() error {
	// Overload so the file wins over stale exported values.
	if err := godotenv.Overload(e.envFile); err != nil {
		slog.Debug("no .env file found, using environment variables", "file", e.envFile)
	} else {
		slog.Debug("loaded .env file (overwriting existing env vars)", "file", e.envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	e.cfg = cfg
	return nil
}
