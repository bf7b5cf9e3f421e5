package cmd

import (
	"github.com/solisp-lang/solisp/verification/config"
	"github.com/spf13/cobra"
)

// addVerifyFlags adds the various flags for the verify command.
func addVerifyFlags() {
	// Prevent alphabetical sorting of usage message
	verifyCmd.Flags().SortFlags = false

	// Config file
	verifyCmd.Flags().String("config", "", "path to config file")

	// Preset
	verifyCmd.Flags().String("preset", "all",
		"check preset to start from: all, none, critical, or maximum (ignored when a config file is found)")

	// Individual check toggles
	verifyCmd.Flags().Bool("strict-arithmetic", false,
		"emit overflow and underflow obligations for every arithmetic operation, not only balance-relevant ones")
	verifyCmd.Flags().Bool("no-balance-safety", false,
		"disable lamport-delta tracking and the balance conservation obligation")

	// External prover
	verifyCmd.Flags().Bool("lean", false, "escalate unresolved obligations to a local Lean toolchain")
	verifyCmd.Flags().String("lean-path", "", "explicit path to the lean binary (default is PATH lookup)")
	verifyCmd.Flags().String("lean-lib", "", "path to the companion proof library, exported through LEAN_PATH")
	verifyCmd.Flags().Int("lean-timeout", 0, "per-obligation timeout for the external prover, in seconds")

	// Outputs
	verifyCmd.Flags().Bool("coverage", false, "print per-category and per-line coverage statistics")
	verifyCmd.Flags().String("certificate", "",
		"write a proof certificate to this path (JSON, or CBOR when the path ends in .cbor)")
	verifyCmd.Flags().String("certificate-store", "",
		"certificate database path; clean runs are recorded and unchanged sources skipped")
}

// updateConfigWithVerifyFlags will update the given properties with any CLI arguments
// that were provided to the verify command.
func updateConfigWithVerifyFlags(cmd *cobra.Command, properties *config.VerificationProperties) error {
	var err error

	// If --strict-arithmetic was used
	if cmd.Flags().Changed("strict-arithmetic") {
		if properties.StrictArithmetic, err = cmd.Flags().GetBool("strict-arithmetic"); err != nil {
			return err
		}
	}

	// If --no-balance-safety was used
	if cmd.Flags().Changed("no-balance-safety") {
		disabled, err := cmd.Flags().GetBool("no-balance-safety")
		if err != nil {
			return err
		}
		properties.BalanceSafety = !disabled
	}

	// If --lean was used
	if cmd.Flags().Changed("lean") {
		if properties.ExternalProver.Enabled, err = cmd.Flags().GetBool("lean"); err != nil {
			return err
		}
	}

	// If --lean-path was used
	if cmd.Flags().Changed("lean-path") {
		if properties.ExternalProver.Path, err = cmd.Flags().GetString("lean-path"); err != nil {
			return err
		}
	}

	// If --lean-lib was used
	if cmd.Flags().Changed("lean-lib") {
		if properties.ExternalProver.LibraryPath, err = cmd.Flags().GetString("lean-lib"); err != nil {
			return err
		}
	}

	// If --lean-timeout was used
	if cmd.Flags().Changed("lean-timeout") {
		if properties.ExternalProver.TimeoutSeconds, err = cmd.Flags().GetInt("lean-timeout"); err != nil {
			return err
		}
	}

	return nil
}
