// Package vc defines the shared data model for verification conditions: risk categories,
// structured predicates with their Lean-style textual rendering, the immutable
// VerificationCondition proof obligation, and ProofResult verdicts.
package vc

import "strings"

// Category describes the risk class a VerificationCondition belongs to. The catalogue is
// closed; dispatch on categories should enumerate the constants below and treat anything
// produced by NewCustomCategory as an explicit extension point.
type Category string

const (
	// CategoryDivisionByZero describes a proof obligation that a divisor is non-zero.
	CategoryDivisionByZero Category = "division-safety"
	// CategoryModuloByZero describes a proof obligation that a modulus is non-zero.
	CategoryModuloByZero Category = "modulo-safety"
	// CategoryArrayBounds describes a proof obligation that an index is within the bounds
	// of a declared array.
	CategoryArrayBounds Category = "array-bounds"
	// CategoryAccountIndexBounds describes a proof obligation that an account-table index
	// is within the bounds of the instruction's account list.
	CategoryAccountIndexBounds Category = "account-index-bounds"
	// CategoryNullCheck describes a proof obligation that an indexed object is non-null.
	CategoryNullCheck Category = "null-check"
	// CategoryIntegerOverflow describes a proof obligation that an arithmetic result fits
	// the 64-bit machine word.
	CategoryIntegerOverflow Category = "integer-overflow"
	// CategoryIntegerUnderflow describes a proof obligation that a subtraction does not
	// wrap below zero.
	CategoryIntegerUnderflow Category = "integer-underflow"
	// CategorySignedOverflow describes a proof obligation that a signed operation stays
	// within the i64 range.
	CategorySignedOverflow Category = "signed-overflow"
	// CategoryShiftRange describes a proof obligation that a shift amount is below the
	// word width.
	CategoryShiftRange Category = "shift-range"
	// CategoryCastTruncation describes a proof obligation that a narrowing cast loses no
	// significant bits.
	CategoryCastTruncation Category = "cast-truncation"
	// CategoryRefinementType describes a proof obligation that a bound value satisfies the
	// refinement predicate of its annotated type.
	CategoryRefinementType Category = "refinement"
	// CategoryBalanceConservation describes the aggregate proof obligation that all
	// recorded lamport deltas of one instruction sum to zero.
	CategoryBalanceConservation Category = "balance-conservation"
	// CategorySignerCheck describes a proof obligation that an account was verified as a
	// transaction signer before being acted upon.
	CategorySignerCheck Category = "signer-check"
	// CategoryWritableCheck describes a proof obligation that an account was verified as
	// writable before mutation.
	CategoryWritableCheck Category = "writability-check"
	// CategoryOwnerCheck describes a proof obligation that an account's owner was verified
	// before a trusting read or write.
	CategoryOwnerCheck Category = "account-owner-check"
	// CategoryDiscriminatorCheck describes a proof obligation that an account's leading
	// type discriminator was validated before deserialization.
	CategoryDiscriminatorCheck Category = "discriminator-check"
	// CategoryAccountInitialized describes a proof obligation that an account was
	// initialized before use.
	CategoryAccountInitialized Category = "account-initialized"
	// CategoryUninitializedRead describes a proof obligation that a variable is assigned
	// before it is read.
	CategoryUninitializedRead Category = "uninitialized-read"
	// CategoryDoubleFree describes a proof obligation that an account is not closed twice.
	CategoryDoubleFree Category = "double-free"
	// CategoryDoubleFreeDetected describes a statically detected double close. The
	// generator emits it only when the violation is certain; the prover surfaces the
	// precomputed Disproved verdict.
	CategoryDoubleFreeDetected Category = "double-free-detected"
	// CategoryCloseAuthority describes a proof obligation that the authority closing an
	// account was validated.
	CategoryCloseAuthority Category = "close-authority"
	// CategoryReentrancy describes a proof obligation that state is settled before an
	// external invocation can re-enter the program.
	CategoryReentrancy Category = "reentrancy"
	// CategoryReentrancyDepthExceeded describes a statically detected cross-program
	// invocation nesting beyond the runtime limit. The generator emits it only when the
	// violation is certain; the prover surfaces the precomputed Disproved verdict.
	CategoryReentrancyDepthExceeded Category = "reentrancy-depth-exceeded"
	// CategoryCPIDepth describes a proof obligation that cross-program invocation nesting
	// stays within the runtime limit of 4.
	CategoryCPIDepth Category = "cpi-depth"
	// CategoryRecursionDetected describes a textual self-recursion found via the
	// generator's call stack.
	CategoryRecursionDetected Category = "recursion-detected"
	// CategoryPDASeedDerivation describes a proof obligation that PDA seeds are well formed.
	CategoryPDASeedDerivation Category = "pda-seed-derivation"
	// CategoryPDACollision describes the advisory heuristic that distinct seed sets may
	// collide on one program address.
	CategoryPDACollision Category = "pda-collision"
	// CategoryBumpCanonicity describes a proof obligation that a PDA bump is the canonical
	// bump returned by derivation, not an attacker-supplied one.
	CategoryBumpCanonicity Category = "bump-canonicity"
	// CategorySeedLength describes a proof obligation that a PDA seed fits the runtime's
	// maximum seed length.
	CategorySeedLength Category = "seed-length"
	// CategoryBufferOverrun describes a proof obligation that a memory store stays within
	// its target region.
	CategoryBufferOverrun Category = "buffer-overrun"
	// CategoryBufferUnderrun describes a proof obligation that a memory load does not read
	// before its target region.
	CategoryBufferUnderrun Category = "buffer-underrun"
	// CategoryMemoryAlignment describes a proof obligation that a multi-byte memory access
	// is aligned to its width.
	CategoryMemoryAlignment Category = "memory-alignment"
	// CategoryStackDepth describes a proof obligation that call nesting stays within the
	// runtime stack budget.
	CategoryStackDepth Category = "stack-depth"
	// CategoryMemoryLeak describes a proof obligation that allocated regions are released.
	CategoryMemoryLeak Category = "memory-leak"
	// CategoryFlashLoan describes the advisory heuristic flagging balance-sensitive logic
	// reachable within a single transaction's borrow window.
	CategoryFlashLoan Category = "flash-loan"
	// CategoryOracleManipulation describes the advisory heuristic flagging price reads
	// without staleness or deviation checks.
	CategoryOracleManipulation Category = "oracle-manipulation"
	// CategoryFrontRunning describes the advisory heuristic flagging order-sensitive state
	// transitions.
	CategoryFrontRunning Category = "front-running"
	// CategoryTimelock describes the advisory heuristic flagging privileged operations
	// without an enforced delay.
	CategoryTimelock Category = "timelock"
	// CategoryTokenOwnerCheck describes a proof obligation that a token account's owner
	// was validated before a transfer.
	CategoryTokenOwnerCheck Category = "token-owner-check"
	// CategoryMintAuthority describes a proof obligation that the mint authority was
	// validated before minting.
	CategoryMintAuthority Category = "mint-authority"
	// CategoryBurnAuthority describes a proof obligation that the burn authority was
	// validated before burning.
	CategoryBurnAuthority Category = "burn-authority"
	// CategorySysvarCheck describes a proof obligation that a sysvar address was validated
	// before the sysvar's contents were trusted.
	CategorySysvarCheck Category = "sysvar-check"
	// CategoryProgramIDCheck describes a proof obligation that an invoked program's id was
	// validated.
	CategoryProgramIDCheck Category = "program-id-check"
	// CategoryExecutableCheck describes a proof obligation that an invoked account is
	// marked executable.
	CategoryExecutableCheck Category = "executable-check"
	// CategoryRentExemption describes a proof obligation that a created account is funded
	// above the rent-exemption threshold.
	CategoryRentExemption Category = "rent-exemption"
	// CategoryLoopInvariantEntry describes a proof obligation that an annotated loop
	// invariant holds on entry to the loop.
	CategoryLoopInvariantEntry Category = "loop-invariant-entry"
	// CategoryLoopInvariantPreservation describes a proof obligation that an annotated
	// loop invariant is preserved by one iteration under the loop condition.
	CategoryLoopInvariantPreservation Category = "loop-invariant-preservation"
)

// customCategoryPrefix marks categories created through NewCustomCategory.
const customCategoryPrefix = "custom/"

// NewCustomCategory returns a Category outside the fixed catalogue. Custom categories are
// proved conservatively: absent recognizable evidence they resolve to Unknown.
func NewCustomCategory(name string) Category {
	return Category(customCategoryPrefix + name)
}

// IsCustom indicates whether the category was created through NewCustomCategory.
func (c Category) IsCustom() bool {
	return strings.HasPrefix(string(c), customCategoryPrefix)
}

// IsAdvisory indicates whether the category is a heuristic resolved as an advisory
// warning rather than a genuine safety proof.
func (c Category) IsAdvisory() bool {
	switch c {
	case CategoryPDACollision, CategoryFlashLoan, CategoryOracleManipulation,
		CategoryFrontRunning, CategoryTimelock:
		return true
	default:
		return false
	}
}

// IsConstructionResolved indicates whether the category is emitted only when the
// generator has already statically detected the violating condition, so the prover's
// role is to surface the precomputed Disproved verdict.
func (c Category) IsConstructionResolved() bool {
	switch c {
	case CategoryReentrancyDepthExceeded, CategoryDoubleFreeDetected, CategoryRecursionDetected:
		return true
	default:
		return false
	}
}

// String returns the category tag.
func (c Category) String() string {
	return string(c)
}
