package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/solisp-lang/solisp/verification/config"
	"github.com/spf13/cobra"
)

// initCmd represents the command provider for init.
var initCmd = &cobra.Command{
	Use:           "init",
	Short:         "Initializes a verification configuration",
	Long:          `Initializes a verification configuration`,
	Args:          cmdValidateInitArgs,
	RunE:          cmdRunInit,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Output path for the config file
	initCmd.Flags().String("out", "", fmt.Sprintf("output path for the new config file (default is ./%s)", DefaultConfigFilename))

	rootCmd.AddCommand(initCmd)
}

// cmdValidateInitArgs makes sure that there are no positional arguments provided to the
// init command.
func cmdValidateInitArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("init does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the init command", err)
		return err
	}
	return nil
}

// cmdRunInit executes the CLI init command, writing a default configuration file.
func cmdRunInit(cmd *cobra.Command, args []string) error {
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}
	if outputPath == "" {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the init command", err)
			return err
		}
		outputPath = filepath.Join(workingDirectory, DefaultConfigFilename)
	}

	// Refuse to clobber an existing configuration.
	if _, err = os.Stat(outputPath); err == nil {
		err = fmt.Errorf("a configuration file already exists at %s", outputPath)
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	if err = config.All().WriteFile(outputPath); err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	cmdLogger.Info("Project configuration successfully created: ", outputPath)
	return nil
}
