package cmd

import (
	"github.com/rs/zerolog"
	"github.com/solisp-lang/solisp/logging"
	"github.com/spf13/cobra"
)

// cmdLogger describes the logger used by the CLI commands.
var cmdLogger = logging.GlobalLogger.NewSubLogger("module", "cli")

var rootCmd = &cobra.Command{
	Use:   "solisp",
	Short: "A verification engine for Solisp smart contracts",
	Long:  "solisp generates and proves safety conditions for Solisp smart-contract programs",
}

func Execute() error {
	// The CLI is the entry point that turns logging on; libraries inherit the global
	// logger and stay silent when embedded.
	logging.GlobalLogger.SetLevel(zerolog.InfoLevel)
	logging.GlobalLogger.EnableConsole()

	// Rebind the command logger so it picks up the console output enabled above.
	cmdLogger = logging.GlobalLogger.NewSubLogger("module", "cli")

	return rootCmd.Execute()
}
