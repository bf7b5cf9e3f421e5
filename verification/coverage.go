package verification

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/solisp-lang/solisp/verification/vc"
	"golang.org/x/exp/maps"
)

// CategoryCoverage describes the per-category verdict tallies of one run.
type CategoryCoverage struct {
	// Category describes the risk class.
	Category vc.Category

	// Total counts the conditions emitted in this category.
	Total int

	// Proved, Disproved, Unknown, and Advisory count the verdicts.
	Proved    int
	Disproved int
	Unknown   int
	Advisory  int
}

// ProvedPercent returns the share of this category's conditions that were proved, as a
// percentage rounded to two decimal places.
func (c *CategoryCoverage) ProvedPercent() decimal.Decimal {
	if c.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(c.Proved)).
		Div(decimal.NewFromInt(int64(c.Total))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// LineCoverage describes the verdicts attached to one source line.
type LineCoverage struct {
	// File and Line describe the source position.
	File string
	Line int

	// Conditions counts the obligations tied to the line.
	Conditions int

	// AllProved indicates whether every obligation on the line was proved.
	AllProved bool
}

// CoverageReport describes which risks a run examined and how thoroughly it discharged
// them.
type CoverageReport struct {
	// Categories describes the per-category tallies, sorted by category tag.
	Categories []*CategoryCoverage

	// Lines describes the per-line tallies, sorted by file then line.
	Lines []*LineCoverage
}

// ComputeCoverage builds a coverage report from a run's outcomes.
func ComputeCoverage(result *Result) *CoverageReport {
	byCategory := make(map[vc.Category]*CategoryCoverage)
	type lineKey struct {
		file string
		line int
	}
	byLine := make(map[lineKey]*LineCoverage)

	for _, outcome := range result.Outcomes {
		category := byCategory[outcome.Condition.Category]
		if category == nil {
			category = &CategoryCoverage{Category: outcome.Condition.Category}
			byCategory[outcome.Condition.Category] = category
		}
		category.Total++
		switch {
		case outcome.Result.Proved():
			category.Proved++
		case outcome.Result.Disproved():
			category.Disproved++
		case outcome.Result.Advisory():
			category.Advisory++
		default:
			category.Unknown++
		}

		if location := outcome.Condition.Location; location != nil {
			key := lineKey{file: location.File, line: location.Line}
			line := byLine[key]
			if line == nil {
				line = &LineCoverage{File: location.File, Line: location.Line, AllProved: true}
				byLine[key] = line
			}
			line.Conditions++
			if !outcome.Result.Proved() && !outcome.Result.Advisory() {
				line.AllProved = false
			}
		}
	}

	report := &CoverageReport{
		Categories: maps.Values(byCategory),
		Lines:      maps.Values(byLine),
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})
	sort.Slice(report.Lines, func(i, j int) bool {
		if report.Lines[i].File != report.Lines[j].File {
			return report.Lines[i].File < report.Lines[j].File
		}
		return report.Lines[i].Line < report.Lines[j].Line
	})
	return report
}

// ProvedPercent returns the share of all conditions in the report that were proved, as a
// percentage rounded to two decimal places. Advisory conditions are excluded from the
// denominator; they are warnings, not obligations.
func (r *CoverageReport) ProvedPercent() decimal.Decimal {
	total, proved := 0, 0
	for _, category := range r.Categories {
		total += category.Total - category.Advisory
		proved += category.Proved
	}
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(proved)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}
