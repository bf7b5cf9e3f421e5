// Package prover implements the built-in prover: a fast, conservative decision layer that
// attempts to discharge verification conditions through constant arithmetic, symbolic
// value entailment, and structural matching against in-scope assumptions. The prover is
// biased against false confidence: Proved requires affirmative evidence, Disproved
// requires definite falsity, and everything else resolves to Unknown.
package prover

import (
	"fmt"

	"github.com/solisp-lang/solisp/logging"
	"github.com/solisp-lang/solisp/verification/symbolic"
	"github.com/solisp-lang/solisp/verification/vc"
)

// Prover discharges verification conditions against one symbolic environment. Each Prove
// call clones the environment, so a Prover may be shared across goroutines proving
// different conditions concurrently.
type Prover struct {
	// env describes the symbolic knowledge gathered from the program's declarations.
	env *symbolic.Environment

	// logger describes the Prover's log output.
	logger *logging.Logger
}

// NewProver returns a Prover reasoning over the provided environment. A nil environment
// is treated as empty.
func NewProver(env *symbolic.Environment) *Prover {
	if env == nil {
		env = symbolic.NewEnvironment()
	}
	return &Prover{
		env:    env,
		logger: logging.GlobalLogger.NewSubLogger("module", "prover"),
	}
}

// Prove attempts to discharge one verification condition and returns a verdict. Prove
// never mutates the condition or the Prover's environment.
func (p *Prover) Prove(condition *vc.VerificationCondition) *vc.ProofResult {
	// Advisory categories are heuristics, not provable properties; they always resolve to
	// a warning carrying the generator's description.
	if condition.Category.IsAdvisory() {
		return vc.NewAdvisoryResult(condition.Description)
	}

	// Construction-resolved categories are emitted only when the generator already found
	// the violating construction, so the verdict is precomputed.
	if condition.Category.IsConstructionResolved() {
		return vc.NewDisprovedResult(condition.Description)
	}

	// Layer the condition's assumption snapshot onto a private clone of the environment.
	// Comparisons narrow variable values through the path-condition machinery; facts are
	// collected for name-and-argument matching.
	env := p.env.Clone()
	facts := make(map[string]bool)
	for _, assumption := range condition.Assumptions {
		applyAssumption(env, facts, assumption)
	}

	result := p.provePredicate(env, facts, condition, condition.Property)
	p.logger.Trace("proved condition ", condition.ID, ": ", result.Status)
	return result
}

// provePredicate dispatches on the structure of the property.
func (p *Prover) provePredicate(env *symbolic.Environment, facts map[string]bool, condition *vc.VerificationCondition, property vc.Predicate) *vc.ProofResult {
	switch property := property.(type) {
	case *vc.Comparison:
		return p.proveComparison(env, facts, condition, property)

	case *vc.Fact:
		return p.proveFact(facts, condition, property)

	case *vc.Conjunction:
		// A conjunction is proved when every operand is proved and disproved when any
		// operand is disproved.
		var sketches []string
		for _, operand := range property.Operands {
			result := p.provePredicate(env, facts, condition, operand)
			if result.Disproved() {
				return result
			}
			if !result.Proved() {
				return vc.NewUnknownResult(fmt.Sprintf("conjunct %s could not be established: %s", operand.Render(), result.Reason))
			}
			sketches = append(sketches, result.ProofSketch)
		}
		return vc.NewProvedResult(joinSketches(sketches), "every conjunct of the property was established")

	case *vc.Negation:
		result := p.provePredicate(env, facts, condition, property.Operand)
		switch {
		case result.Proved():
			return vc.NewDisprovedResult(fmt.Sprintf("negated operand %s was proved: %s", property.Operand.Render(), result.ProofSketch))
		case result.Disproved():
			return vc.NewProvedResult(
				fmt.Sprintf("negated operand %s is definitely false: %s", property.Operand.Render(), result.Counterexample),
				"the negated claim was refuted")
		default:
			return vc.NewUnknownResult(fmt.Sprintf("negated operand %s could not be decided", property.Operand.Render()))
		}

	case *vc.Atom:
		switch property.Text {
		case "True":
			return vc.NewProvedResult("the property is the trivial truth", "trivially true")
		case "False":
			return vc.NewDisprovedResult("the property is the trivial falsehood")
		default:
			// Opaque formulas entail nothing on their own; the only discharge route is an
			// identical in-scope assumption.
			for _, assumption := range condition.Assumptions {
				if assumption.Render() == property.Text {
					return vc.NewProvedResult(
						fmt.Sprintf("assumption %s matches the property verbatim", property.Text),
						"an identical assumption is in scope")
				}
			}
			return vc.NewUnknownResult(fmt.Sprintf("property %s is outside the decidable fragment; establish it with a guard or assume", property.Text))
		}

	default:
		return vc.NewUnknownResult("property has no recognizable structure")
	}
}

// proveComparison attempts the three comparison strategies in order of strength: full
// constant evaluation, symbolic value entailment for single-variable residues, and
// structural matching against in-scope assumptions.
func (p *Prover) proveComparison(env *symbolic.Environment, facts map[string]bool, condition *vc.VerificationCondition, cmp *vc.Comparison) *vc.ProofResult {
	// Null obligations over declared arrays are discharged by construction: a declared
	// array is never the none sentinel.
	if result := proveDeclaredArrayNonNull(env, cmp); result != nil {
		return result
	}

	lhs, lhsOK := termToLinear(env, cmp.Lhs)
	rhs, rhsOK := termToLinear(env, cmp.Rhs)

	if lhsOK && rhsOK {
		difference := lhs.sub(rhs)

		// Fully resolved: the comparison reduces to integer arithmetic over known values.
		if constant, ok := difference.constantValue(); ok {
			if cmp.Op.Holds(constant, bigZero) {
				return vc.NewProvedResult(
					fmt.Sprintf("%s evaluates to %s and %s evaluates to %s; %s holds by arithmetic",
						cmp.Lhs.Render(), lhs.render(), cmp.Rhs.Render(), rhs.render(), cmp.Render()),
					"both sides reduce to known integers and the comparison holds")
			}
			return vc.NewDisprovedResult(
				fmt.Sprintf("%s evaluates to %s but %s evaluates to %s, so %s fails",
					cmp.Lhs.Render(), lhs.render(), cmp.Rhs.Render(), rhs.render(), cmp.Render()))
		}

		// One unresolved variable: the comparison rearranges to "variable op bound" and
		// the variable's symbolic value may decide it.
		if name, op, bound, ok := difference.singleVariableComparison(cmp.Op); ok {
			if value, found := env.Get(name); found {
				proved, disproved := valueDecides(value, op, bound)
				if proved {
					return vc.NewProvedResult(
						fmt.Sprintf("symbolic value of %s is %s, which entails %s %s %s",
							name, value.String(), name, op.Render(), bound.String()),
						fmt.Sprintf("the recorded value of %s decides the comparison", name))
				}
				if disproved {
					return vc.NewDisprovedResult(
						fmt.Sprintf("symbolic value of %s is %s, which refutes %s %s %s",
							name, value.String(), name, op.Render(), bound.String()))
				}
			}
		}
	}

	// Structural fallback: an in-scope assumption may state the comparison, or a strictly
	// stronger one, directly.
	if matched, ok := assumptionEntails(condition.Assumptions, cmp); ok {
		return vc.NewProvedResult(
			fmt.Sprintf("assumption %s entails %s", matched, cmp.Render()),
			"an in-scope assumption entails the property")
	}

	return vc.NewUnknownResult(fmt.Sprintf(
		"no static evidence decides %s; a guard or assume establishing it would discharge this obligation", cmp.Render()))
}

// proveFact discharges a protocol fact obligation by matching it against the facts
// established on the current path.
func (p *Prover) proveFact(facts map[string]bool, condition *vc.VerificationCondition, fact *vc.Fact) *vc.ProofResult {
	rendered := fact.Render()
	if facts[rendered] {
		return vc.NewProvedResult(
			fmt.Sprintf("fact %s was established earlier on this path", rendered),
			"a matching verification call or guard is in scope")
	}
	return vc.NewUnknownResult(fmt.Sprintf(
		"%s was not established on this path; %s", rendered, factRemedy(condition.Category)))
}

// factRemedy returns the source-level remedy suggestion for an undischarged protocol
// fact, phrased per category.
func factRemedy(category vc.Category) string {
	switch category {
	case vc.CategorySignerCheck:
		return "add an assert-signer call or guard on account-is-signer before this operation"
	case vc.CategoryWritableCheck:
		return "add an assert-writable call or guard on account-is-writable before this operation"
	case vc.CategoryOwnerCheck:
		return "add an assert-owner call before trusting this account's data"
	case vc.CategoryDiscriminatorCheck:
		return "add a check-discriminator call before deserializing this account"
	case vc.CategoryCloseAuthority:
		return "validate the closing authority before the close"
	case vc.CategoryReentrancy:
		return "settle all state writes before the cross-program invocation"
	case vc.CategoryBumpCanonicity:
		return "derive the bump with derive-pda instead of accepting it as input"
	default:
		return "establish the fact with the matching assert call or guard"
	}
}

// proveDeclaredArrayNonNull discharges a null obligation over an object the environment
// knows to be a declared array. Returns nil when the shortcut does not apply.
func proveDeclaredArrayNonNull(env *symbolic.Environment, cmp *vc.Comparison) *vc.ProofResult {
	if cmp.Op != vc.CmpNeq || cmp.Lhs.Kind != vc.TermVar || cmp.Rhs.Kind != vc.TermVar || cmp.Rhs.Name != "none" {
		return nil
	}
	if _, declared := env.ArraySize(cmp.Lhs.Name); !declared {
		return nil
	}
	return vc.NewProvedResult(
		fmt.Sprintf("%s is a declared array and cannot be none", cmp.Lhs.Name),
		"the indexed object is an array declared in this program")
}

// applyAssumption folds one assumption into the prover's working state: comparisons
// become path conditions narrowing the environment, facts join the fact set, and compound
// assumptions recurse.
func applyAssumption(env *symbolic.Environment, facts map[string]bool, assumption vc.Predicate) {
	switch assumption := assumption.(type) {
	case *vc.Fact:
		facts[assumption.Render()] = true
	case *vc.Conjunction:
		for _, operand := range assumption.Operands {
			applyAssumption(env, facts, operand)
		}
	case *vc.Negation:
		if cmp, ok := assumption.Operand.(*vc.Comparison); ok {
			applyComparisonAssumption(env, vc.NewComparison(cmp.Op.Negated(), cmp.Lhs, cmp.Rhs))
		}
	case *vc.Comparison:
		applyComparisonAssumption(env, assumption)
	}
}

// joinSketches joins the per-conjunct proof sketches into one.
func joinSketches(sketches []string) string {
	joined := ""
	for i, sketch := range sketches {
		if i > 0 {
			joined += "; "
		}
		joined += sketch
	}
	return joined
}
