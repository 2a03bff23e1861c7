// Package classifier is the rules core of the pipeline: it turns raw
// observation text into a standardized classification (severity grade,
// structural/service type, adoptability, recommendation, cost band)
// following the MSCC5 code table, SRM grading, OS19x adoption rules and
// the repair/cleaning manuals. Classification is a pure function of the
// input text, the sector and the injected reference data, so concurrent
// calls are safe without synchronization.
package classifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"defect-classify-pipeline/composer"
	"defect-classify-pipeline/models"
	"defect-classify-pipeline/parser"
	"defect-classify-pipeline/standards"
)

// Options carries the optional caller-supplied inputs.
type Options struct {
	// SecstatGrades, when present and non-nil for a field, overrides
	// the classifier's inferred grade for that defect type.
	SecstatGrades *models.SecstatGrades
	// CostBands is the per-user cost-band override map keyed by grade.
	CostBands map[int]string
}

// Classifier applies the classification decision list against the
// injected reference data.
type Classifier struct {
	std  standards.Provider
	comp *composer.Composer
}

func New(std standards.Provider) *Classifier {
	return &Classifier{std: std, comp: composer.New(std)}
}

// evalContext is the per-call evaluation state shared by the decision
// rules.
type evalContext struct {
	raw    string
	lower  string
	sector string
	opts   Options

	parsed       []models.ParsedObservation
	parsedLoaded bool
}

func (ctx *evalContext) observations() []models.ParsedObservation {
	if !ctx.parsedLoaded {
		ctx.parsed = parser.Parse(ctx.raw)
		ctx.parsedLoaded = true
	}
	return ctx.parsed
}

// rule is one (predicate, result-builder) pair of the ordered decision
// list. The list is evaluated top to bottom and the first match fully
// determines the result.
type rule struct {
	name    string
	matches func(ctx *evalContext) bool
	build   func(ctx *evalContext) models.ClassificationResult
}

// Classify classifies one section's defect text for a sector.
func (c *Classifier) Classify(defectText, sector string) models.ClassificationResult {
	return c.ClassifyWithOptions(defectText, sector, Options{})
}

// ClassifyWithOptions is Classify plus authoritative-grade and
// cost-band overrides.
func (c *Classifier) ClassifyWithOptions(defectText, sector string, opts Options) models.ClassificationResult {
	ctx := &evalContext{
		raw:    defectText,
		lower:  strings.ToLower(defectText),
		sector: strings.ToLower(strings.TrimSpace(sector)),
		opts:   opts,
	}

	for _, r := range c.decisionList() {
		if r.matches(ctx) {
			result := r.build(ctx)
			c.applySecstatOverride(&result, ctx)
			return result
		}
	}
	return c.zeroGradeResult(ctx)
}

// decisionList is the canonical classification order. First match wins;
// no fall-through after a match.
func (c *Classifier) decisionList() []rule {
	return []rule{
		{
			// Hard-locked observation categories. Fixed business rule,
			// never weakened by later branches.
			name: "hard-locked-categories",
			matches: func(ctx *evalContext) bool {
				return strings.Contains(ctx.lower, "construction features") ||
					strings.Contains(ctx.lower, "miscellaneous features")
			},
			build: func(ctx *evalContext) models.ClassificationResult {
				return c.zeroGradeResult(ctx)
			},
		},
		{
			name: "explicit-no-defect",
			matches: func(ctx *evalContext) bool {
				return strings.Contains(ctx.lower, "no action required") ||
					strings.Contains(ctx.lower, "acceptable condition")
			},
			build: func(ctx *evalContext) models.ClassificationResult {
				return c.zeroGradeResult(ctx)
			},
		},
		{
			name:    "observation-only",
			matches: c.isObservationOnly,
			build:   c.buildObservationOnly,
		},
		{
			name: "multi-defect-parse",
			matches: func(ctx *evalContext) bool {
				return len(ctx.observations()) >= 1
			},
			build: c.buildFromParsed,
		},
		{
			name:    "single-defect-keywords",
			matches: c.matchesKeywordCascade,
			build:   c.buildFromKeywords,
		},
		{
			name:    "zero-default",
			matches: func(ctx *evalContext) bool { return true },
			build: func(ctx *evalContext) models.ClassificationResult {
				return c.zeroGradeResult(ctx)
			},
		},
	}
}

// zeroGradeResult is the canonical "no action required" classification.
func (c *Classifier) zeroGradeResult(ctx *evalContext) models.ClassificationResult {
	return models.ClassificationResult{
		DefectCode:        "",
		DefectDescription: "No action required",
		SeverityGrade:     0,
		DefectType:        models.DefectTypeService,
		Recommendations:   "No action required. Pipe observed in acceptable structural and service condition.",
		RiskAssessment:    "None",
		Adoptable:         models.AdoptableYes,
		EstimatedCost:     "£0",
		SRMGrading:        c.srmGradingText(models.DefectTypeService, 0),
	}
}

func (c *Classifier) srmGradingText(defectType string, grade int) string {
	entry, ok := c.std.SRMGrading(defectType, grade)
	if !ok {
		return fmt.Sprintf("Grade %d", grade)
	}
	return fmt.Sprintf("Grade %d: %s. %s", grade, entry.Description, entry.ActionRequired)
}

// adjustGrade applies the percentage severity adjustment to a base
// grade. An unknown percentage leaves the base unchanged.
func adjustGrade(base int, percentage string) int {
	pct, ok := parsePercentage(percentage)
	if !ok {
		return base
	}
	grade := base
	switch {
	case pct >= 50:
		grade = base + 2
	case pct >= 30:
		grade = base + 1
	case pct >= 10:
		grade = base
	default:
		grade = base - 1
	}
	if grade > 5 {
		grade = 5
	}
	if grade < 1 {
		grade = 1
	}
	return grade
}

// parsePercentage reads "NN" or "NN-MM" tokens, taking the upper bound
// of a range.
func parsePercentage(percentage string) (int, bool) {
	percentage = strings.TrimSpace(strings.TrimSuffix(percentage, "%"))
	if percentage == "" {
		return 0, false
	}
	if idx := strings.Index(percentage, "-"); idx >= 0 {
		percentage = percentage[idx+1:]
	}
	pct, err := strconv.Atoi(strings.TrimSpace(percentage))
	if err != nil {
		return 0, false
	}
	return pct, true
}

// escalateForSector applies the sector-specific grade floor: adoption
// sector structural defects never grade below 3.
func escalateForSector(grade int, defectType, sector string) int {
	if sector == models.SectorAdoption && defectType == models.DefectTypeStructural && grade < 3 {
		return 3
	}
	return grade
}

// determineAdoptable is the pure adoptability function of
// (type, grade, sector). OS19x overrides are layered on top separately.
func determineAdoptable(defectType string, grade int, sector string) string {
	switch {
	case grade >= 4:
		return models.AdoptableNo
	case grade == 3 && (sector == models.SectorAdoption || defectType == models.DefectTypeStructural):
		return models.AdoptableConditional
	default:
		return models.AdoptableYes
	}
}

// applyOS19x layers the OS19x adoption overrides onto a result. OS19x
// is an adoption-standard reference, so it applies in the adoption
// sector only.
func (c *Classifier) applyOS19x(result *models.ClassificationResult, codes []string, sector string) {
	if sector != models.SectorAdoption {
		return
	}
	for _, code := range codes {
		if c.std.OS19xBanned(code) {
			result.Adoptable = models.AdoptableNo
			result.AdoptionNotes = standards.OS19xBannedNote
			return
		}
	}
	maxGrade := c.std.OS19xMaxGrade(result.DefectType)
	if result.SeverityGrade > maxGrade {
		std := c.std.AdoptionStandard(sector)
		if result.DefectType == models.DefectTypeStructural {
			result.Adoptable = models.AdoptableNo
		} else {
			result.Adoptable = models.AdoptableConditional
		}
		result.AdoptionNotes = fmt.Sprintf(
			"Grade %d exceeds the OS19x limit of grade %d for %s defects under %s.",
			result.SeverityGrade, maxGrade, result.DefectType, std.StandardName)
	}
}

// applySecstatOverride substitutes authoritative source-database grades
// for the inferred grade of the matching defect type, then re-derives
// the grade-dependent fields.
func (c *Classifier) applySecstatOverride(result *models.ClassificationResult, ctx *evalContext) {
	grades := ctx.opts.SecstatGrades
	if grades == nil {
		return
	}
	var override *int
	switch result.DefectType {
	case models.DefectTypeStructural:
		override = grades.Structural
	case models.DefectTypeService:
		override = grades.Service
	}
	if override == nil || *override == result.SeverityGrade {
		return
	}
	result.SeverityGrade = *override
	result.Adoptable = determineAdoptable(result.DefectType, result.SeverityGrade, ctx.sector)
	result.EstimatedCost = c.comp.CostBand(result.SeverityGrade, ctx.opts.CostBands)
	result.SRMGrading = c.srmGradingText(result.DefectType, result.SeverityGrade)
	c.applyOS19x(result, codeTokens(ctx.raw), ctx.sector)
}

var (
	reCodeToken      = regexp.MustCompile(`\b[A-Z]{1,4}(?:/[A-Z])?\b`)
	rePercentageText = regexp.MustCompile(`(\d{1,3}(?:-\d{1,3})?)\s*%`)
)

// codeTokens extracts candidate all-caps code tokens in order of
// appearance.
func codeTokens(text string) []string {
	return reCodeToken.FindAllString(text, -1)
}
