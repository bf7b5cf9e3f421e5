package generator

import (
	"fmt"
	"strings"

	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/verification/vc"
)

// verificationCalls maps assert-style callees onto the protocol fact they establish for
// the remainder of the enclosing block.
var verificationCalls = map[string]string{
	"assert-signer":         "account_is_signer",
	"assert-writable":       "account_is_writable",
	"assert-owner":          "account_owner_checked",
	"check-discriminator":   "discriminator_checked",
	"assert-program-id":     "program_id_checked",
	"assert-rent-exempt":    "rent_exempt_checked",
	"assert-sysvar":         "sysvar_checked",
	"assert-token-owner":    "token_owner_checked",
	"assert-mint-authority": "mint_authority_checked",
	"assert-burn-authority": "burn_authority_checked",
	"assert-bump":           "bump_canonical",
	"assert-executable":     "executable_checked",
}

// advisoryCalls maps callee names onto the heuristic advisory their presence triggers.
var advisoryCalls = map[string]struct {
	category vc.Category
	warning  string
}{
	"flash-borrow":          {vc.CategoryFlashLoan, "balance-sensitive logic is reachable within a single transaction's borrow window"},
	"flash-repay":           {vc.CategoryFlashLoan, "flash repayment does not prove intermediate state was safe"},
	"oracle-price":          {vc.CategoryOracleManipulation, "price read has no staleness or deviation check in view"},
	"get-price":             {vc.CategoryOracleManipulation, "price read has no staleness or deviation check in view"},
	"swap":                  {vc.CategoryFrontRunning, "order-sensitive state transition may be front-run"},
	"place-order":           {vc.CategoryFrontRunning, "order-sensitive state transition may be front-run"},
	"set-admin":             {vc.CategoryTimelock, "privileged reconfiguration has no enforced delay in view"},
	"set-upgrade-authority": {vc.CategoryTimelock, "privileged reconfiguration has no enforced delay in view"},
}

// memoryAccessWidths maps memory syscalls onto their access width in bytes.
var memoryAccessWidths = map[string]int64{
	"load-u8": 1, "load-u16": 2, "load-u32": 4, "load-u64": 8,
	"store-u8": 1, "store-u16": 2, "store-u32": 4, "store-u64": 8,
}

// handleCall emits the obligations of one call expression and returns how many
// assumptions it left on the stack. Only statement-position calls may narrow the
// enclosing block; expression-position callers discard the pushes.
func (g *Generator) handleCall(ctx *analysisContext, call *ast.CallExpr, statementPosition bool) int {
	// Textual self-recursion is the one cross-procedure condition tracked.
	for _, inFlight := range ctx.callStack {
		if inFlight == call.Callee {
			ctx.emit(vc.CategoryRecursionDetected,
				fmt.Sprintf("function '%s' recurses into itself", call.Callee),
				call.Location(), vc.NewFact("terminates", call.Callee), "decide")
			break
		}
	}

	// assume is a runtime no-op that hand-feeds the prover a fact the generator cannot
	// derive itself.
	if call.Callee == "assume" && len(call.Args) == 1 {
		assumption := conditionToPredicate(call.Args[0])
		ctx.pushAssumption(assumption)
		recordEstablishedFacts(ctx, assumption)
		return 1
	}

	// Arguments are risky expressions in their own right and are visited first, in
	// program order. Cross-program invocations visit their arguments at incremented
	// depth instead.
	if call.Callee != "invoke" && call.Callee != "invoke-signed" {
		for _, arg := range call.Args {
			g.walkExpression(ctx, arg)
		}
	}

	if fact, ok := verificationCalls[call.Callee]; ok {
		predicate := vc.NewFact(fact, argNames(call.Args)...)
		recordEstablishedFacts(ctx, predicate)
		ctx.pushAssumption(predicate)
		return 1
	}

	if advisory, ok := advisoryCalls[call.Callee]; ok {
		ctx.emit(advisory.category, advisory.warning, call.Location(),
			vc.NewFact("advisory", call.Callee), "advisory")
	}

	switch call.Callee {
	case "set-lamports", "add-lamports", "sub-lamports":
		g.emitLamportMutation(ctx, call)
	case "close-account", "token-close":
		g.emitAccountClose(ctx, call)
	case "invoke", "invoke-signed":
		g.emitCrossProgramInvocation(ctx, call)
	case "derive-pda", "create-pda":
		g.emitPDADerivation(ctx, call)
	case "token-transfer", "token-mint", "token-burn":
		g.emitTokenOperation(ctx, call)
	case "sysvar-clock", "sysvar-rent", "sysvar-epoch-schedule":
		ctx.emit(vc.CategorySysvarCheck,
			fmt.Sprintf("sysvar address of %s is validated before its contents are trusted", call.Callee),
			call.Location(), vc.NewFact("sysvar_checked", strings.TrimPrefix(call.Callee, "sysvar-")), "assumption")
	case "create-account":
		g.emitAccountCreation(ctx, call)
	default:
		if _, ok := memoryAccessWidths[call.Callee]; ok {
			g.emitMemoryAccess(ctx, call)
		}
	}
	return 0
}

// requireAccountFact emits a keyword obligation for a protocol fact about an account,
// unless that fact was already established by an earlier call on the same control-flow
// path.
func (g *Generator) requireAccountFact(ctx *analysisContext, category vc.Category, fact string, account string, location *ast.SourceLocation, description string) {
	switch fact {
	case "account_is_signer":
		if ctx.verifiedSigners[account] {
			return
		}
	case "account_is_writable":
		if ctx.verifiedWritable[account] {
			return
		}
	case "account_owner_checked":
		if ctx.verifiedOwners[account] {
			return
		}
	}
	ctx.emit(category, description, location, vc.NewFact(fact, account), "assumption")
}

// emitLamportMutation emits the obligations of a direct balance mutation and records its
// delta for the aggregate conservation obligation.
func (g *Generator) emitLamportMutation(ctx *analysisContext, call *ast.CallExpr) {
	account := accountName(call.Args, 0)
	g.emitUseAfterClose(ctx, call, account)
	g.requireAccountFact(ctx, vc.CategorySignerCheck, "account_is_signer", account, call.Location(),
		fmt.Sprintf("account '%s' has a verified signer before %s", account, call.Callee))
	g.requireAccountFact(ctx, vc.CategoryWritableCheck, "account_is_writable", account, call.Location(),
		fmt.Sprintf("account '%s' is writable before %s", account, call.Callee))

	if len(call.Args) < 2 {
		return
	}
	amount := exprToTerm(call.Args[1])
	lamports := vc.VarTerm(account + ".lamports")

	switch call.Callee {
	case "add-lamports":
		if ctx.properties.BalanceSafety {
			ctx.lamportDeltas = append(ctx.lamportDeltas, lamportDelta{account: account, delta: amount})
		}
		// Balance arithmetic always carries overflow obligations, independent of the
		// strict-arithmetic flag.
		ctx.emit(vc.CategoryIntegerOverflow,
			fmt.Sprintf("crediting %s to '%s' fits the 64-bit machine word", renderExpr(call.Args[1]), account),
			call.Location(),
			vc.NewComparison(vc.CmpLeq, vc.AddTerm(lamports, amount), vc.ConstTerm(maxU64)),
			"omega")
	case "sub-lamports":
		if ctx.properties.BalanceSafety {
			ctx.lamportDeltas = append(ctx.lamportDeltas, lamportDelta{account: account, delta: amount, negative: true})
		}
		ctx.emit(vc.CategoryIntegerUnderflow,
			fmt.Sprintf("debiting %s from '%s' does not wrap below zero", renderExpr(call.Args[1]), account),
			call.Location(),
			vc.NewComparison(vc.CmpGeq, vc.NatCastTerm(lamports), vc.NatCastTerm(amount)),
			"omega")
	case "set-lamports":
		if ctx.properties.BalanceSafety {
			// An absolute write changes the balance by (new - old).
			ctx.lamportDeltas = append(ctx.lamportDeltas, lamportDelta{account: account, delta: vc.SubTerm(amount, lamports)})
		}
	}
}

// emitAccountClose emits the obligations of closing an account. A close of an account
// already closed on the same path is a statically certain double free.
func (g *Generator) emitAccountClose(ctx *analysisContext, call *ast.CallExpr) {
	account := accountName(call.Args, 0)

	if ctx.closedAccounts[account] {
		ctx.emit(vc.CategoryDoubleFreeDetected,
			fmt.Sprintf("account '%s' is closed twice on the same path", account),
			call.Location(), vc.NewFact("closed_once", account), "decide")
		return
	}
	ctx.closedAccounts[account] = true

	g.requireAccountFact(ctx, vc.CategorySignerCheck, "account_is_signer", account, call.Location(),
		fmt.Sprintf("account '%s' has a verified signer before close", account))
	g.requireAccountFact(ctx, vc.CategoryWritableCheck, "account_is_writable", account, call.Location(),
		fmt.Sprintf("account '%s' is writable before close", account))
	ctx.emit(vc.CategoryCloseAuthority,
		fmt.Sprintf("authority closing '%s' is validated", account),
		call.Location(), vc.NewFact("close_authority_checked", account), "assumption")
}

// emitUseAfterClose emits an obligation when an account is acted upon after being closed
// on the same path.
func (g *Generator) emitUseAfterClose(ctx *analysisContext, call *ast.CallExpr, account string) {
	if !ctx.closedAccounts[account] {
		return
	}
	ctx.emit(vc.CategoryDoubleFree,
		fmt.Sprintf("account '%s' is used by %s after being closed on this path", account, call.Callee),
		call.Location(), vc.NewFact("account_not_closed", account), "assumption")
}

// emitCrossProgramInvocation emits the obligations of an invoke, visiting nested calls
// at incremented CPI depth. Nesting statically beyond the runtime limit is certain to
// fault.
func (g *Generator) emitCrossProgramInvocation(ctx *analysisContext, call *ast.CallExpr) {
	program := accountName(call.Args, 0)

	ctx.cpiDepth++
	if ctx.cpiDepth > maxCPIDepth {
		ctx.emit(vc.CategoryReentrancyDepthExceeded,
			fmt.Sprintf("cross-program invocation nests to depth %d, beyond the runtime limit of %d", ctx.cpiDepth, maxCPIDepth),
			call.Location(), vc.NewFact("cpi_depth_within_limit", program), "decide")
	} else {
		ctx.emit(vc.CategoryCPIDepth,
			fmt.Sprintf("cross-program invocation depth %d stays within the runtime limit", ctx.cpiDepth),
			call.Location(),
			vc.NewComparison(vc.CmpLeq, vc.Int64Term(int64(ctx.cpiDepth)), vc.Int64Term(maxCPIDepth)),
			"decide")
	}

	ctx.emit(vc.CategoryProgramIDCheck,
		fmt.Sprintf("invoked program '%s' has a validated program id", program),
		call.Location(), vc.NewFact("program_id_checked", program), "assumption")
	ctx.emit(vc.CategoryExecutableCheck,
		fmt.Sprintf("invoked account '%s' is marked executable", program),
		call.Location(), vc.NewFact("executable_checked", program), "assumption")
	ctx.emit(vc.CategoryReentrancy,
		fmt.Sprintf("program state is settled before invoking '%s'", program),
		call.Location(), vc.NewFact("state_settled_before_cpi", program), "assumption")

	for _, arg := range call.Args {
		g.walkExpression(ctx, arg)
	}
	ctx.cpiDepth--
}

// emitPDADerivation emits the obligations of deriving or creating a program-derived
// address.
func (g *Generator) emitPDADerivation(ctx *analysisContext, call *ast.CallExpr) {
	// maxSeedLength describes the runtime's per-seed byte limit.
	const maxSeedLength = 32

	ctx.emit(vc.CategoryPDASeedDerivation,
		"PDA derivation has at least one seed",
		call.Location(),
		vc.NewComparison(vc.CmpGeq, vc.Int64Term(int64(len(call.Args))), vc.Int64Term(1)),
		"decide")

	for _, arg := range call.Args {
		if seed, ok := arg.(*ast.StringLiteral); ok {
			ctx.emit(vc.CategorySeedLength,
				fmt.Sprintf("seed %q fits the %d-byte limit", seed.Value, maxSeedLength),
				arg.Location(),
				vc.NewComparison(vc.CmpLeq, vc.Int64Term(int64(len(seed.Value))), vc.Int64Term(maxSeedLength)),
				"decide")
		}
	}

	ctx.emit(vc.CategoryPDACollision,
		"distinct seed sets may collide on one derived address",
		call.Location(), vc.NewFact("advisory", call.Callee), "advisory")

	if call.Callee == "create-pda" {
		account := accountName(call.Args, 0)
		ctx.emit(vc.CategoryBumpCanonicity,
			fmt.Sprintf("bump used for '%s' is the canonical bump returned by derivation", account),
			call.Location(), vc.NewFact("bump_canonical", account), "assumption")
	}
}

// emitTokenOperation emits the obligations of a token transfer, mint, or burn.
func (g *Generator) emitTokenOperation(ctx *analysisContext, call *ast.CallExpr) {
	switch call.Callee {
	case "token-transfer":
		from := accountName(call.Args, 0)
		to := accountName(call.Args, 1)
		g.emitUseAfterClose(ctx, call, from)
		ctx.emit(vc.CategoryTokenOwnerCheck,
			fmt.Sprintf("owner of token account '%s' is validated before transfer", from),
			call.Location(), vc.NewFact("token_owner_checked", from), "assumption")
		g.requireAccountFact(ctx, vc.CategorySignerCheck, "account_is_signer", from, call.Location(),
			fmt.Sprintf("transfer authority for '%s' has signed", from))
		if len(call.Args) >= 3 {
			amount := exprToTerm(call.Args[2])
			ctx.emit(vc.CategoryIntegerUnderflow,
				fmt.Sprintf("transfer of %s does not exceed the balance of '%s'", renderExpr(call.Args[2]), from),
				call.Location(),
				vc.NewComparison(vc.CmpGeq, vc.NatCastTerm(vc.VarTerm(from+".balance")), vc.NatCastTerm(amount)),
				"omega")
			ctx.emit(vc.CategoryIntegerOverflow,
				fmt.Sprintf("crediting %s to '%s' fits the 64-bit machine word", renderExpr(call.Args[2]), to),
				call.Location(),
				vc.NewComparison(vc.CmpLeq, vc.AddTerm(vc.VarTerm(to+".balance"), amount), vc.ConstTerm(maxU64)),
				"omega")
		}
	case "token-mint":
		mint := accountName(call.Args, 0)
		to := accountName(call.Args, 1)
		ctx.emit(vc.CategoryMintAuthority,
			fmt.Sprintf("mint authority of '%s' is validated before minting", mint),
			call.Location(), vc.NewFact("mint_authority_checked", mint), "assumption")
		if len(call.Args) >= 3 {
			ctx.emit(vc.CategoryIntegerOverflow,
				fmt.Sprintf("minting %s to '%s' fits the 64-bit machine word", renderExpr(call.Args[2]), to),
				call.Location(),
				vc.NewComparison(vc.CmpLeq, vc.AddTerm(vc.VarTerm(to+".balance"), exprToTerm(call.Args[2])), vc.ConstTerm(maxU64)),
				"omega")
		}
	case "token-burn":
		mint := accountName(call.Args, 0)
		from := accountName(call.Args, 1)
		ctx.emit(vc.CategoryBurnAuthority,
			fmt.Sprintf("burn authority of '%s' is validated before burning", mint),
			call.Location(), vc.NewFact("burn_authority_checked", mint), "assumption")
		if len(call.Args) >= 3 {
			ctx.emit(vc.CategoryIntegerUnderflow,
				fmt.Sprintf("burning %s does not exceed the balance of '%s'", renderExpr(call.Args[2]), from),
				call.Location(),
				vc.NewComparison(vc.CmpGeq, vc.NatCastTerm(vc.VarTerm(from+".balance")), vc.NatCastTerm(exprToTerm(call.Args[2]))),
				"omega")
		}
	}
}

// emitAccountCreation emits the obligations of creating a new account.
func (g *Generator) emitAccountCreation(ctx *analysisContext, call *ast.CallExpr) {
	payer := accountName(call.Args, 0)
	created := accountName(call.Args, 1)

	g.requireAccountFact(ctx, vc.CategorySignerCheck, "account_is_signer", payer, call.Location(),
		fmt.Sprintf("payer '%s' has signed the account creation", payer))
	g.requireAccountFact(ctx, vc.CategoryWritableCheck, "account_is_writable", created, call.Location(),
		fmt.Sprintf("created account '%s' is writable", created))
	ctx.emit(vc.CategoryRentExemption,
		fmt.Sprintf("created account '%s' is funded above the rent-exemption threshold", created),
		call.Location(), vc.NewFact("rent_exempt_checked", created), "assumption")
	ctx.initialized[created] = true
}

// emitMemoryAccess emits the bounds, alignment, and writability obligations of a raw
// memory load or store.
func (g *Generator) emitMemoryAccess(ctx *analysisContext, call *ast.CallExpr) {
	width := memoryAccessWidths[call.Callee]
	buffer := accountName(call.Args, 0)
	if len(call.Args) < 2 {
		return
	}
	offset := exprToTerm(call.Args[1])

	ctx.emit(vc.CategoryBufferUnderrun,
		fmt.Sprintf("offset %s of %s does not read before '%s'", renderExpr(call.Args[1]), call.Callee, buffer),
		call.Location(),
		vc.NewComparison(vc.CmpGeq, offset, vc.Int64Term(0)),
		"omega")
	ctx.emit(vc.CategoryBufferOverrun,
		fmt.Sprintf("%d-byte access at %s stays within '%s'", width, renderExpr(call.Args[1]), buffer),
		call.Location(),
		vc.NewComparison(vc.CmpLeq, vc.AddTerm(offset, vc.Int64Term(width)), vc.ArrayLenTerm(buffer)),
		"omega")
	if width > 1 {
		ctx.emit(vc.CategoryMemoryAlignment,
			fmt.Sprintf("%d-byte access at %s is aligned to its width", width, renderExpr(call.Args[1])),
			call.Location(),
			vc.NewComparison(vc.CmpEq, vc.ModTerm(offset, vc.Int64Term(width)), vc.Int64Term(0)),
			"omega")
	}
	if strings.HasPrefix(call.Callee, "store-") {
		g.requireAccountFact(ctx, vc.CategoryWritableCheck, "account_is_writable", buffer, call.Location(),
			fmt.Sprintf("store target '%s' is writable", buffer))
	}
}
