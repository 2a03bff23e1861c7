// Package parser extracts structured observation tuples from the raw
// free-text observation strings held against an inspection section.
// Input is origin-agnostic: it may come from a survey database export
// or from PDF text extraction, so every pattern is best-effort and a
// string that matches nothing simply yields no tuples.
package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"defect-classify-pipeline/models"
)

// Version identifies the parser revision stamped onto rules runs.
const Version = "1.4.0"

// Ordered pattern attempts. First match per fragment wins.
var (
	// CODE METERAGE: description  e.g. "DER 13.07m: Settled deposits, coarse"
	reCodeMeterage = regexp.MustCompile(`^([A-Z]{1,4}(?:/[A-Z])?)\s+(\d+(?:\.\d+)?)\s*m\s*[:\-]\s*(.+)$`)
	// CODE list-of-meterages: description  e.g. "DER 13.07m, 16.93m, 17.73m: Settled deposits"
	reCodeMeterageList = regexp.MustCompile(`^([A-Z]{1,4}(?:/[A-Z])?)\s+((?:\d+(?:\.\d+)?\s*m\s*,\s*)+\d+(?:\.\d+)?\s*m)\s*[:\-]\s*(.+)$`)
	// METERAGE CODE: description  e.g. "13.07m DER: Settled deposits"
	reMeterageCode = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*m\s+([A-Z]{1,4}(?:/[A-Z])?)\s*[:\-]\s*(.+)$`)
	// Loose shape: meterage code description percentage?
	reLoose = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*m?\s+([A-Z]{1,4}(?:/[A-Z])?)\s+(.+?)(?:\s+(\d{1,3}(?:-\d{1,3})?)\s*%.*)?$`)
	// Loose shape with the code leading: code meterage description
	reLooseCodeFirst = regexp.MustCompile(`^([A-Z]{1,4}(?:/[A-Z])?)\s+(\d+(?:\.\d+)?)\s*m\s+(.+)$`)
	// Loose shape without an explicit code: meterage description
	reLooseNoCode = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*m?\s+(.+)$`)

	rePercentage = regexp.MustCompile(`(\d{1,3}(?:-\d{1,3})?)\s*%`)
	reMeterageIn = regexp.MustCompile(`\d+(?:\.\d+)?\s*m`)
)

// codeInference maps descriptive phrases to MSCC5 codes for
// observations that carry no explicit code. Evaluated in order, first
// hit wins, so more specific phrases come first.
var codeInference = []struct {
	phrase string
	code   string
}{
	{"settled deposits, coarse", "DER"},
	{"coarse deposits", "DER"},
	{"settled deposits, fine", "DES"},
	{"fine deposits", "DES"},
	{"settled deposits", "DER"},
	{"hard deposits", "DEC"},
	{"concrete deposits", "DEC"},
	{"fracture, circumferential", "FC"},
	{"circumferential fracture", "FC"},
	{"fracture, longitudinal", "FL"},
	{"longitudinal fracture", "FL"},
	{"circumferential crack", "CR"},
	{"longitudinal crack", "CL"},
	{"crack", "CR"},
	{"roots intruding", "RI"},
	{"root intrusion", "RI"},
	{"mass roots", "RO"},
	{"open joint", "OJM"},
	{"displaced joint", "JDM"},
	{"joint displaced", "JDM"},
	{"deformed", "DEF"},
	{"deformity", "DEF"},
	{"obstruction", "OB"},
	{"water level", "WL"},
	{"grease", "GRE"},
	{"blockage", "BLO"},
}

// Parse extracts ParsedObservation tuples from one raw observation
// string. It never fails: unrecognized text yields an empty slice,
// which downstream classification treats as "no actionable defect".
// Output order is a pure function of the input text.
func Parse(raw string) []models.ParsedObservation {
	var out []models.ParsedObservation
	seen := make(map[string]struct{})

	for _, fragment := range Fragments(raw) {
		for _, obs := range parseFragment(fragment) {
			key := obs.Meterage + "|" + obs.DefectCode
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, obs)
		}
	}
	return out
}

// Fragments breaks a raw string into candidate observation fragments
// on newlines and semicolons, preserving order.
func Fragments(raw string) []string {
	var fragments []string
	for _, line := range strings.Split(raw, "\n") {
		for _, part := range strings.Split(line, ";") {
			part = strings.TrimSpace(part)
			if part != "" {
				fragments = append(fragments, part)
			}
		}
	}
	return fragments
}

func parseFragment(fragment string) []models.ParsedObservation {
	// Multi-meterage list first: the single-meterage pattern cannot
	// match it, but trying the list pattern late would shadow nothing
	// and trying it first keeps the expansion in one place.
	if m := reCodeMeterageList.FindStringSubmatch(fragment); m != nil {
		return expandMeterageList(m[1], m[2], m[3])
	}
	if m := reCodeMeterage.FindStringSubmatch(fragment); m != nil {
		return []models.ParsedObservation{{
			Meterage:    normalizeMeterage(m[2]),
			DefectCode:  m[1],
			Description: strings.TrimSpace(m[3]),
			Percentage:  extractPercentage("", m[3]),
		}}
	}
	if m := reMeterageCode.FindStringSubmatch(fragment); m != nil {
		return []models.ParsedObservation{{
			Meterage:    normalizeMeterage(m[1]),
			DefectCode:  m[2],
			Description: strings.TrimSpace(m[3]),
			Percentage:  extractPercentage("", m[3]),
		}}
	}
	if m := reLooseCodeFirst.FindStringSubmatch(fragment); m != nil {
		return []models.ParsedObservation{{
			Meterage:    normalizeMeterage(m[2]),
			DefectCode:  m[1],
			Description: strings.TrimSpace(m[3]),
			Percentage:  extractPercentage("", m[3]),
		}}
	}
	if m := reLoose.FindStringSubmatch(fragment); m != nil {
		return []models.ParsedObservation{{
			Meterage:    normalizeMeterage(m[1]),
			DefectCode:  m[2],
			Description: strings.TrimSpace(m[3]),
			Percentage:  extractPercentage(m[4], m[3]),
		}}
	}
	if m := reLooseNoCode.FindStringSubmatch(fragment); m != nil {
		if code := inferCode(m[2]); code != "" {
			return []models.ParsedObservation{{
				Meterage:    normalizeMeterage(m[1]),
				DefectCode:  code,
				Description: strings.TrimSpace(m[2]),
				Percentage:  extractPercentage("", m[2]),
			}}
		}
	}
	return nil
}

func expandMeterageList(code, list, description string) []models.ParsedObservation {
	description = strings.TrimSpace(description)
	percentage := extractPercentage("", description)

	var out []models.ParsedObservation
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "m"))
		if raw == "" {
			continue
		}
		out = append(out, models.ParsedObservation{
			Meterage:    normalizeMeterage(raw),
			DefectCode:  code,
			Description: description,
			Percentage:  percentage,
		})
	}
	return out
}

// extractPercentage prefers the percentage captured by the main match,
// then falls back to a secondary scan over the description. Absence
// yields empty string, never a numeric default.
func extractPercentage(matched, description string) string {
	if matched != "" {
		return matched
	}
	if m := rePercentage.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return ""
}

func inferCode(description string) string {
	lower := strings.ToLower(description)
	for _, candidate := range codeInference {
		if strings.Contains(lower, candidate.phrase) {
			return candidate.code
		}
	}
	return ""
}

// normalizeMeterage renders a meterage token as a canonical "X.XXm"
// string. Unparseable tokens pass through with an "m" suffix so the
// original value is never silently discarded.
func normalizeMeterage(raw string) string {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "m"))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw + "m"
	}
	return d.StringFixed(2) + "m"
}

// ContainsMeterage reports whether text carries at least one metric
// meterage token. Used by classifier heuristics.
func ContainsMeterage(text string) bool {
	return reMeterageIn.MatchString(text)
}
