package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/solisp-lang/solisp/cmd/exitcodes"
	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/verification"
	"github.com/solisp-lang/solisp/verification/config"
	"github.com/solisp-lang/solisp/verification/leanbridge"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// verifyCmd represents the command provider for verification runs.
var verifyCmd = &cobra.Command{
	Use:               "verify <program>",
	Short:             "Verifies a Solisp program",
	Long:              `Generates safety conditions for a Solisp program and proves them`,
	Args:              cmdValidateVerifyArgs,
	ValidArgsFunction: cmdValidVerifyArgs,
	RunE:              cmdRunVerify,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// cmdValidVerifyArgs will return which flags are valid for dynamic completion for the
// verify command.
func cmdValidVerifyArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveDefault
}

func init() {
	addVerifyFlags()
	rootCmd.AddCommand(verifyCmd)
}

// cmdValidateVerifyArgs makes sure exactly one program file is provided to the verify
// command.
func cmdValidateVerifyArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		err = fmt.Errorf("verify takes exactly one positional argument, the program file emitted by the parser")
		cmdLogger.Error("Failed to validate args to the verify command", err)
		return err
	}
	return nil
}

// cmdRunVerify executes the CLI verify command: it resolves the configuration, decodes
// the program, runs the verification pipeline, prints the outcome, and optionally writes
// a proof certificate.
func cmdRunVerify(cmd *cobra.Command, args []string) error {
	properties, err := resolveVerifyConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the verify command", err)
		return err
	}

	// Decode the program emitted by the parser front end.
	programPath := args[0]
	source, err := os.ReadFile(programPath)
	if err != nil {
		cmdLogger.Error("Failed to read the program file", err)
		return err
	}
	program, err := ast.DecodeProgram(source)
	if err != nil {
		cmdLogger.Error("Failed to parse the program file", err)
		return err
	}

	// An up-to-date stored certificate lets the run be skipped entirely.
	storePath, err := cmd.Flags().GetString("certificate-store")
	if err != nil {
		return err
	}
	var store *verification.CertificateStore
	if storePath != "" {
		if store, err = verification.OpenCertificateStore(storePath); err != nil {
			cmdLogger.Error("Failed to open the certificate store", err)
			return err
		}
		defer store.Close()

		cached, err := store.Lookup(verification.HashSource(source))
		if err != nil {
			cmdLogger.Error("Failed to read the certificate store", err)
			return err
		}
		if cached != nil && cached.Success {
			cmdLogger.Info("Source is unchanged since certificate ", cached.RunID, "; skipping verification")
			return nil
		}
	}

	verifier := verification.NewVerifier(properties)
	if properties.ExternalProver.Enabled {
		verifier.UseExternalProver(leanbridge.NewBridge(&properties.ExternalProver))
	}

	result, err := verifier.Verify(cmd.Context(), program)
	if err != nil {
		cmdLogger.Error("Failed to run the verify command", err)
		return err
	}
	printResult(cmd, result)

	if err = exportCertificate(cmd, store, source, result); err != nil {
		cmdLogger.Error("Failed to export the proof certificate", err)
		return err
	}

	if !result.Success {
		return exitcodes.NewErrorWithExitCode(
			fmt.Errorf("%d verification conditions were disproved", result.Failed),
			exitcodes.ExitCodeVerificationFailed)
	}
	return nil
}

// resolveVerifyConfig builds the effective configuration from the preset flag, an
// optional config file, and individual flag overrides, in that order of precedence
// (lowest first).
func resolveVerifyConfig(cmd *cobra.Command) (*config.VerificationProperties, error) {
	properties, err := presetProperties(cmd)
	if err != nil {
		return nil, err
	}

	// A config file replaces the preset when present; --config makes a missing file an
	// error while the default solisp.json is optional.
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(workingDirectory, DefaultConfigFilename)
	}
	if _, existenceError := os.Stat(configPath); existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", configPath)
		if properties, err = config.ReadFile(configPath); err != nil {
			return nil, err
		}
	} else if configFlagUsed {
		return nil, fmt.Errorf("could not find the configuration file at %s", configPath)
	}

	if err = updateConfigWithVerifyFlags(cmd, properties); err != nil {
		return nil, err
	}
	return properties, properties.Validate()
}

// presetProperties returns the configuration preset selected by the --preset flag.
func presetProperties(cmd *cobra.Command) (*config.VerificationProperties, error) {
	preset, err := cmd.Flags().GetString("preset")
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(preset) {
	case "all":
		return config.All(), nil
	case "none":
		return config.None(), nil
	case "critical":
		return config.CriticalOnly(), nil
	case "maximum":
		return config.Maximum(), nil
	default:
		return nil, fmt.Errorf("unrecognized preset %q, expected all, none, critical, or maximum", preset)
	}
}

// printResult reports the run's verdicts and, when requested, its coverage statistics.
func printResult(cmd *cobra.Command, result *verification.Result) {
	cmdLogger.Info("Verification finished in ", result.TimeMS, "ms: ",
		result.Proved, " proved, ", result.Failed, " disproved, ",
		result.Unknown, " unknown, ", result.Advisory, " advisory")

	for _, outcome := range result.Disproved() {
		location := ""
		if outcome.Condition.Location != nil {
			location = " at " + outcome.Condition.Location.String()
		}
		cmdLogger.Error("Disproved ", outcome.Condition.ID, location, ": ", outcome.Result.Counterexample)
	}
	for _, outcome := range result.Unresolved() {
		cmdLogger.Warn("Unknown ", outcome.Condition.ID, ": ", outcome.Result.Reason)
	}

	if showCoverage, _ := cmd.Flags().GetBool("coverage"); showCoverage {
		report := verification.ComputeCoverage(result)
		cmdLogger.Info("Proved ", report.ProvedPercent().String(), "% of all conditions")
		for _, category := range report.Categories {
			cmdLogger.Info("  ", category.Category.String(), ": ",
				category.Proved, "/", category.Total, " proved (", category.ProvedPercent().String(), "%)")
		}
		for _, line := range report.Lines {
			if !line.AllProved {
				cmdLogger.Warn("  unproved obligations remain at ", line.File, ":", line.Line)
			}
		}
	}
}

// exportCertificate writes the run's proof certificate to the configured file and store.
func exportCertificate(cmd *cobra.Command, store *verification.CertificateStore, source []byte, result *verification.Result) error {
	certificatePath, err := cmd.Flags().GetString("certificate")
	if err != nil {
		return err
	}
	if certificatePath == "" && store == nil {
		return nil
	}

	certificate := verification.NewCertificate(source, result)
	if certificatePath != "" {
		var encoded []byte
		if strings.HasSuffix(certificatePath, ".cbor") {
			encoded, err = certificate.EncodeCBOR()
		} else {
			encoded, err = certificate.EncodeJSON()
		}
		if err != nil {
			return err
		}
		if err = os.WriteFile(certificatePath, encoded, 0644); err != nil {
			return err
		}
		cmdLogger.Info("Wrote proof certificate to ", certificatePath)
	}
	if store != nil {
		if err = store.Save(certificate); err != nil {
			return err
		}
	}
	return nil
}
