package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeHandledError indicates the error was already reported to the user and only
	// the exit code should propagate.
	ExitCodeHandledError = 6

	// ExitCodeVerificationFailed indicates a verification run disproved at least one
	// condition.
	ExitCodeVerificationFailed = 7
)
