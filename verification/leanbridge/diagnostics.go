package leanbridge

import (
	"regexp"
	"strconv"
	"strings"
)

// Diagnostic describes one message parsed from the toolchain's output.
type Diagnostic struct {
	// File describes the source file the diagnostic is attached to.
	File string

	// Line and Column describe the position within the file.
	Line   int
	Column int

	// Severity describes the diagnostic class, e.g. "error" or "warning".
	Severity string

	// Message describes the diagnostic text.
	Message string
}

// diagnosticPattern matches the toolchain's "file:line:col: severity: message" lines.
var diagnosticPattern = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s*(error|warning|info):\s*(.*)$`)

// ParseDiagnostics extracts structured diagnostics from toolchain output. Lines outside
// the diagnostic format are treated as continuations of the preceding message.
func ParseDiagnostics(output string) []Diagnostic {
	var diagnostics []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		match := diagnosticPattern.FindStringSubmatch(line)
		if match == nil {
			// Continuation lines extend the previous diagnostic's message.
			if len(diagnostics) > 0 && strings.TrimSpace(line) != "" {
				diagnostics[len(diagnostics)-1].Message += " " + strings.TrimSpace(line)
			}
			continue
		}
		lineNumber, _ := strconv.Atoi(match[2])
		columnNumber, _ := strconv.Atoi(match[3])
		diagnostics = append(diagnostics, Diagnostic{
			File:     match[1],
			Line:     lineNumber,
			Column:   columnNumber,
			Severity: match[4],
			Message:  match[5],
		})
	}
	return diagnostics
}

// hasErrors indicates whether any diagnostic carries error severity.
func hasErrors(diagnostics []Diagnostic) bool {
	for _, diagnostic := range diagnostics {
		if diagnostic.Severity == "error" {
			return true
		}
	}
	return false
}

// firstError returns the message of the first error-severity diagnostic, or the empty
// string.
func firstError(diagnostics []Diagnostic) string {
	for _, diagnostic := range diagnostics {
		if diagnostic.Severity == "error" {
			return diagnostic.Message
		}
	}
	return ""
}
