// Package leanbridge implements the optional external prover integration: verification
// conditions are rendered as Lean 4 theorem stubs and checked by a locally installed
// Lean toolchain. The bridge degrades gracefully: when Lean is missing, too old, or times
// out, conditions keep their built-in verdicts and the bridge reports why it stood down.
package leanbridge

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"time"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
	"github.com/solisp-lang/solisp/logging"
	"github.com/solisp-lang/solisp/utils"
	"github.com/solisp-lang/solisp/verification/config"
	"github.com/solisp-lang/solisp/verification/vc"
)

// minimumLeanVersion describes the oldest Lean toolchain the bridge will drive. Lean 3
// and Lean 4 theorem syntax are mutually incompatible, so anything older is rejected
// outright.
const minimumLeanVersion = "4.0.0"

// defaultTimeout describes the per-condition check timeout applied when the
// configuration does not specify one.
const defaultTimeout = 10 * time.Second

// leanVersionPattern extracts the semantic version from `lean --version` output, e.g.
// "Lean (version 4.7.0, ...)".
var leanVersionPattern = regexp.MustCompile(`version (\d+\.\d+\.\d+)`)

// Bridge describes a handle to a validated external Lean toolchain. Construct one with
// NewBridge; a Bridge whose Available method returns false performs no checks.
type Bridge struct {
	// executablePath describes the resolved path of the lean executable.
	executablePath string

	// libraryPath describes the LEAN_PATH value exported to the toolchain, if any.
	libraryPath string

	// timeout describes the per-condition check timeout.
	timeout time.Duration

	// version describes the detected toolchain version.
	version *semver.Version

	// unavailableReason describes why the bridge stood down, when it did.
	unavailableReason string

	// logger describes the bridge's log output.
	logger *logging.Logger
}

// NewBridge locates and validates the external Lean toolchain described by the provided
// configuration. Discovery failures do not return an error: the bridge is returned in an
// unavailable state carrying the reason, so verification proceeds on built-in verdicts
// alone.
func NewBridge(cfg *config.ExternalProverConfig) *Bridge {
	bridge := &Bridge{
		timeout: defaultTimeout,
		logger:  logging.GlobalLogger.NewSubLogger("module", "leanbridge"),
	}
	if cfg == nil || !cfg.Enabled {
		bridge.unavailableReason = "external prover is disabled in configuration"
		return bridge
	}
	bridge.libraryPath = cfg.LibraryPath
	if cfg.TimeoutSeconds > 0 {
		bridge.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	// Resolve the executable, preferring an explicitly configured path over PATH lookup.
	executablePath := cfg.Path
	if executablePath == "" {
		resolved, err := exec.LookPath("lean")
		if err != nil {
			bridge.unavailableReason = "no lean executable found on PATH"
			bridge.logger.Warn("external prover unavailable: ", bridge.unavailableReason)
			return bridge
		}
		executablePath = resolved
	}

	version, err := probeVersion(executablePath)
	if err != nil {
		bridge.unavailableReason = err.Error()
		bridge.logger.Warn("external prover unavailable: ", bridge.unavailableReason)
		return bridge
	}

	minimum := semver.MustParse(minimumLeanVersion)
	if version.LessThan(minimum) {
		bridge.unavailableReason = fmt.Sprintf("lean %s is older than the minimum supported %s", version, minimum)
		bridge.logger.Warn("external prover unavailable: ", bridge.unavailableReason)
		return bridge
	}

	bridge.executablePath = executablePath
	bridge.version = version
	bridge.logger.Debug("external prover ready: lean ", version.String(), " at ", executablePath)
	return bridge
}

// Available indicates whether the bridge found a usable toolchain.
func (b *Bridge) Available() bool {
	return b.executablePath != ""
}

// UnavailableReason returns why the bridge stood down, or the empty string when it is
// available.
func (b *Bridge) UnavailableReason() string {
	return b.unavailableReason
}

// Version returns the detected toolchain version, or nil when unavailable.
func (b *Bridge) Version() *semver.Version {
	return b.version
}

// Check renders the condition as a Lean theorem and asks the toolchain to elaborate it.
// A clean elaboration upgrades the condition to Proved; any diagnostic, timeout, or
// toolchain failure yields Unknown so the external prover can never manufacture a
// Disproved verdict.
func (b *Bridge) Check(ctx context.Context, condition *vc.VerificationCondition) (*vc.ProofResult, error) {
	if !b.Available() {
		return nil, errors.New("external prover is not available: " + b.unavailableReason)
	}

	theorem := RenderTheorem(condition)

	// The toolchain elaborates files, not stdin, so each check round-trips through a
	// temporary .lean file.
	file, err := os.CreateTemp("", "solisp-vc-*.lean")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer os.Remove(file.Name())
	if _, err = file.WriteString(theorem); err != nil {
		file.Close()
		return nil, errors.WithStack(err)
	}
	if err = file.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	command := exec.CommandContext(checkCtx, b.executablePath, file.Name())
	command.Env = os.Environ()
	if b.libraryPath != "" {
		command.Env = append(command.Env, "LEAN_PATH="+b.libraryPath)
	}

	_, _, combined, runErr := utils.RunCommandWithOutputAndError(command)
	if checkCtx.Err() == context.DeadlineExceeded {
		return vc.NewUnknownResult(fmt.Sprintf("lean timed out after %s elaborating the theorem", b.timeout)), nil
	}

	diagnostics := ParseDiagnostics(string(combined))
	if runErr == nil && !hasErrors(diagnostics) {
		return vc.NewProvedResult(
			fmt.Sprintf("lean %s elaborated the theorem without diagnostics", b.version),
			"the external prover accepted the rendered theorem"), nil
	}

	reason := "lean rejected the theorem"
	if message := firstError(diagnostics); message != "" {
		reason = "lean rejected the theorem: " + message
	} else if runErr != nil {
		reason = "lean exited with an error: " + runErr.Error()
	}
	return vc.NewUnknownResult(reason), nil
}

// probeVersion runs `lean --version` and parses the reported toolchain version.
func probeVersion(executablePath string) (*semver.Version, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	command := exec.CommandContext(ctx, executablePath, "--version")
	stdout, _, _, err := utils.RunCommandWithOutputAndError(command)
	if err != nil {
		return nil, errors.Wrap(err, "could not probe lean version")
	}

	match := leanVersionPattern.FindStringSubmatch(string(stdout))
	if match == nil {
		return nil, errors.Errorf("could not parse lean version from %q", string(stdout))
	}
	version, err := semver.NewVersion(match[1])
	if err != nil {
		return nil, errors.Wrap(err, "could not parse lean version")
	}
	return version, nil
}
