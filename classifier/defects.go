package classifier

import (
	"fmt"
	"strings"

	"defect-classify-pipeline/models"
	"defect-classify-pipeline/standards"
)

// buildFromParsed aggregates parsed observation tuples into one
// classification: the highest adjusted grade wins (ties broken by
// first occurrence), descriptions concatenate with "; " and distinct
// recommended actions union in first-seen order. Entries whose code is
// missing from the MSCC5 table are skipped; if every entry is unknown
// the result degenerates to the zero-grade default.
func (c *Classifier) buildFromParsed(ctx *evalContext) models.ClassificationResult {
	type gradedEntry struct {
		obs   models.ParsedObservation
		entry standards.DefectCodeEntry
		grade int
	}

	var graded []gradedEntry
	for _, obs := range ctx.observations() {
		entry, ok := c.std.DefectCode(obs.DefectCode)
		if !ok {
			continue
		}
		graded = append(graded, gradedEntry{
			obs:   obs,
			entry: entry,
			grade: adjustGrade(entry.DefaultGrade, obs.Percentage),
		})
	}
	if len(graded) == 0 {
		return c.zeroGradeResult(ctx)
	}

	lead := graded[0]
	var descriptions []string
	var actions []string
	seenActions := make(map[string]struct{})
	codes := make([]string, 0, len(graded))
	maxOpAction := 0

	for _, g := range graded {
		if g.grade > lead.grade {
			lead = g
		}
		descriptions = append(descriptions, fmt.Sprintf("%s at %s", g.entry.Description, g.obs.Meterage))
		action := g.entry.RecommendedAction
		if g.entry.Code == "S/A" {
			action = c.serviceConnectionRecommendation(ctx)
		}
		if _, dup := seenActions[action]; !dup {
			seenActions[action] = struct{}{}
			actions = append(actions, action)
		}
		codes = append(codes, g.entry.Code)
		if g.entry.ActionType > maxOpAction {
			maxOpAction = g.entry.ActionType
		}
	}

	grade := escalateForSector(lead.grade, lead.entry.Type, ctx.sector)
	comp := c.comp.Compose(lead.entry.Code, lead.entry.Type, grade, ctx.sector, ctx.opts.CostBands)

	result := models.ClassificationResult{
		DefectCode:            lead.entry.Code,
		DefectDescription:     strings.Join(descriptions, "; "),
		SeverityGrade:         grade,
		DefectType:            lead.entry.Type,
		Recommendations:       strings.Join(actions, " "),
		RiskAssessment:        lead.entry.Risk,
		Adoptable:             determineAdoptable(lead.entry.Type, grade, ctx.sector),
		EstimatedCost:         comp.EstimatedCost,
		SRMGrading:            c.srmGradingText(lead.entry.Type, grade),
		RecommendationMethods: comp.RecommendationMethods,
		CleaningMethods:       comp.CleaningMethods,
	}
	c.applyOS19x(&result, codes, ctx.sector)
	c.appendConnectionRecommendations(&result, ctx)
	return result
}

// keywordMatch is one entry of the single-defect keyword cascade:
// an ordered substring predicate resolving to an MSCC5 code.
type keywordMatch struct {
	matches func(lower string) bool
	code    string
}

func containsAll(lower string, needles ...string) bool {
	for _, needle := range needles {
		if !strings.Contains(lower, needle) {
			return false
		}
	}
	return true
}

func containsAny(lower string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

// keywordCascade is the fixed priority list for single-defect fallback
// matching. Order is load-bearing: more specific predicates sit above
// the generic ones they refine.
var keywordCascade = []keywordMatch{
	{func(s string) bool { return containsAll(s, "fracture", "circumferential") }, "FC"},
	{func(s string) bool { return containsAll(s, "fracture", "longitudinal") }, "FL"},
	{func(s string) bool { return strings.Contains(s, "crack") }, "CR"},
	{func(s string) bool { return strings.Contains(s, "root") }, "RI"},
	{func(s string) bool {
		return containsAll(s, "joint", "displace") && containsAny(s, "large", "major")
	}, "JDL"},
	{func(s string) bool { return containsAll(s, "joint", "displace") && strings.Contains(s, "medium") }, "JDM"},
	{func(s string) bool { return containsAll(s, "joint", "displace") }, "JDS"},
	{func(s string) bool {
		return containsAll(s, "joint", "open") && containsAny(s, "large", "longitudinal")
	}, "OJL"},
	{func(s string) bool { return containsAll(s, "joint", "open") }, "OJM"},
	{func(s string) bool {
		return containsAny(s, "deposit", "silt", "debris") && containsAny(s, "concrete", "hard")
	}, "DEC"},
	{func(s string) bool {
		return containsAny(s, "deposit", "silt", "debris") && strings.Contains(s, "coarse")
	}, "DER"},
	{func(s string) bool {
		return containsAny(s, "deposit", "silt", "debris") && strings.Contains(s, "fine")
	}, "DES"},
	{func(s string) bool { return containsAny(s, "deposit", "silt", "debris") }, "DER"},
	{func(s string) bool { return strings.Contains(s, "water level") }, "WL"},
	{func(s string) bool { return strings.Contains(s, "other obstacles") }, "OBI"},
	{func(s string) bool { return containsAny(s, "obstacle", "obstruction") }, "OB"},
	{func(s string) bool { return containsAny(s, "deformity", "deformed", "deformation") }, "DEF"},
	{func(s string) bool { return strings.Contains(s, "service connection") }, "S/A"},
	{func(s string) bool { return strings.Contains(s, "grease") }, "GRE"},
	{func(s string) bool { return strings.Contains(s, "blockage") }, "BLO"},
}

func (c *Classifier) matchesKeywordCascade(ctx *evalContext) bool {
	return c.cascadeCode(ctx) != ""
}

func (c *Classifier) cascadeCode(ctx *evalContext) string {
	for _, candidate := range keywordCascade {
		if candidate.matches(ctx.lower) {
			return candidate.code
		}
	}
	return ""
}

// buildFromKeywords classifies from the first cascade hit, applying
// the same percentage adjustment, sector escalation, adoptability and
// OS19x logic as the parsed path.
func (c *Classifier) buildFromKeywords(ctx *evalContext) models.ClassificationResult {
	code := c.cascadeCode(ctx)
	entry, ok := c.std.DefectCode(code)
	if !ok {
		return c.zeroGradeResult(ctx)
	}

	percentage := ""
	if m := rePercentageText.FindStringSubmatch(ctx.raw); m != nil {
		percentage = m[1]
	}
	grade := adjustGrade(entry.DefaultGrade, percentage)
	grade = escalateForSector(grade, entry.Type, ctx.sector)
	comp := c.comp.Compose(entry.Code, entry.Type, grade, ctx.sector, ctx.opts.CostBands)

	recommendation := comp.Recommendations
	if recommendation == "" {
		recommendation = entry.RecommendedAction
	}
	if entry.Code == "S/A" {
		recommendation = c.serviceConnectionRecommendation(ctx)
	}

	result := models.ClassificationResult{
		DefectCode:            entry.Code,
		DefectDescription:     entry.Description,
		SeverityGrade:         grade,
		DefectType:            entry.Type,
		Recommendations:       recommendation,
		RiskAssessment:        entry.Risk,
		Adoptable:             determineAdoptable(entry.Type, grade, ctx.sector),
		EstimatedCost:         comp.EstimatedCost,
		SRMGrading:            c.srmGradingText(entry.Type, grade),
		RecommendationMethods: comp.RecommendationMethods,
		CleaningMethods:       comp.CleaningMethods,
	}
	c.applyOS19x(&result, []string{entry.Code}, ctx.sector)
	c.appendConnectionRecommendations(&result, ctx)
	return result
}
