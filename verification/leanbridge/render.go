package leanbridge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solisp-lang/solisp/verification/vc"
)

// RenderTheorem renders a verification condition as a standalone Lean 4 theorem stub:
// every free variable becomes a natural-number binder, every assumption a named
// hypothesis, and the condition's suggested tactic becomes the proof body.
func RenderTheorem(condition *vc.VerificationCondition) string {
	var builder strings.Builder

	builder.WriteString("-- ")
	builder.WriteString(condition.Description)
	builder.WriteString("\n")
	if condition.Location != nil {
		builder.WriteString(fmt.Sprintf("-- %s:%d:%d\n", condition.Location.File, condition.Location.Line, condition.Location.Column))
	}

	builder.WriteString("theorem ")
	builder.WriteString(theoremName(condition.ID))

	for _, variable := range freeVariables(condition) {
		builder.WriteString(fmt.Sprintf(" (%s : Nat)", sanitizeIdentifier(variable)))
	}
	for i, assumption := range condition.Assumptions {
		builder.WriteString(fmt.Sprintf(" (h%d : %s)", i, sanitizePredicate(assumption.Render())))
	}

	builder.WriteString(" :\n    ")
	builder.WriteString(sanitizePredicate(condition.PropertyText()))
	builder.WriteString(" := by\n  ")

	tactic := condition.Tactic
	if tactic == "" || tactic == "advisory" {
		tactic = "sorry"
	}
	builder.WriteString(tactic)
	builder.WriteString("\n")
	return builder.String()
}

// theoremName derives a valid Lean identifier from a condition id, e.g.
// "division-safety-0001" becomes "vc_division_safety_0001".
func theoremName(id string) string {
	return "vc_" + sanitizeIdentifier(id)
}

// sanitizeIdentifier rewrites characters Lean identifiers cannot carry.
func sanitizeIdentifier(name string) string {
	var builder strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	return builder.String()
}

// sanitizePredicate rewrites the rendered predicate's member-style accessors into Lean
// identifiers, keeping the comparison and connective symbols intact.
func sanitizePredicate(rendered string) string {
	replacer := strings.NewReplacer(
		".size", "_size",
		".lamports", "_lamports",
		".balance", "_balance",
		".toNat", "",
		"-", "_",
	)
	return replacer.Replace(rendered)
}

// freeVariables collects the variable names referenced by the condition's property and
// assumptions, sorted for deterministic output.
func freeVariables(condition *vc.VerificationCondition) []string {
	seen := make(map[string]bool)
	collectPredicateVariables(condition.Property, seen)
	for _, assumption := range condition.Assumptions {
		collectPredicateVariables(assumption, seen)
	}

	variables := make([]string, 0, len(seen))
	for variable := range seen {
		variables = append(variables, variable)
	}
	sort.Strings(variables)
	return variables
}

// collectPredicateVariables walks a predicate recording variable and array references.
func collectPredicateVariables(predicate vc.Predicate, seen map[string]bool) {
	switch predicate := predicate.(type) {
	case *vc.Comparison:
		collectTermVariables(predicate.Lhs, seen)
		collectTermVariables(predicate.Rhs, seen)
	case *vc.Conjunction:
		for _, operand := range predicate.Operands {
			collectPredicateVariables(operand, seen)
		}
	case *vc.Negation:
		collectPredicateVariables(predicate.Operand, seen)
	}
}

// collectTermVariables walks a term recording variable and array references.
func collectTermVariables(term *vc.Term, seen map[string]bool) {
	if term == nil {
		return
	}
	switch term.Kind {
	case vc.TermVar:
		seen[term.Name] = true
	case vc.TermArrayLen:
		seen[term.Name+".size"] = true
	case vc.TermNatCast:
		collectTermVariables(term.Inner, seen)
	case vc.TermAdd, vc.TermSub, vc.TermMul, vc.TermMod:
		collectTermVariables(term.Left, seen)
		collectTermVariables(term.Right, seen)
	}
}
