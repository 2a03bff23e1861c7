package classifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"defect-classify-pipeline/models"
	"defect-classify-pipeline/standards"
)

// observationKeywords are phrases that mark text as a non-defect
// observation even without an explicit code.
var observationKeywords = []string{
	"water level",
	"line deviates",
	"general remark",
	"pipe material",
	"rest bend",
	"material changes",
	"change of material",
	"material change",
	"no coding",
}

var reWaterLevelPct = regexp.MustCompile(`(?i)(?:wl|water level)[^%]*?(\d{1,3})\s*%`)

// isObservationOnly reports whether the text contains only recognized
// non-defect observation codes or observation-keyword phrases, and no
// defect-indicating code.
func (c *Classifier) isObservationOnly(ctx *evalContext) bool {
	tokens := codeTokens(ctx.raw)
	for _, token := range tokens {
		for _, defect := range standards.DefectIndicatingCodes {
			if strings.EqualFold(token, defect) {
				return false
			}
		}
	}

	if len(tokens) > 0 {
		allObservation := true
		for _, token := range tokens {
			if !c.std.IsObservationCode(token) {
				allObservation = false
				break
			}
		}
		if allObservation {
			return true
		}
	}

	for _, keyword := range observationKeywords {
		if strings.Contains(ctx.lower, keyword) {
			return true
		}
	}
	return false
}

// buildObservationOnly routes observation-only text through the
// ordered sub-checks: no coding present, high water level, belly
// condition, then the canonical zero-grade result.
func (c *Classifier) buildObservationOnly(ctx *evalContext) models.ClassificationResult {
	if strings.Contains(ctx.lower, "no coding present") || strings.Contains(ctx.lower, "no coding") {
		return c.noCodingResult(ctx)
	}
	if pct, ok := highestWaterLevel(ctx.raw); ok && pct >= 50 {
		return c.highWaterResult(ctx, pct)
	}
	if belly := c.AnalyzeBelly(ctx.raw, ctx.sector); belly.IsBelly {
		return c.bellyResult(ctx, belly)
	}
	return c.zeroGradeResult(ctx)
}

// noCodingResult covers surveys delivered without observation coding:
// the section cannot be graded from the footage, so it is cleansed and
// resurveyed.
func (c *Classifier) noCodingResult(ctx *evalContext) models.ClassificationResult {
	grade := 2
	return models.ClassificationResult{
		DefectCode:        "",
		DefectDescription: "No coding present in survey data",
		SeverityGrade:     grade,
		DefectType:        models.DefectTypeService,
		Recommendations:   "No observation coding present for this section. Cleanse and resurvey to obtain a coded condition record.",
		RiskAssessment:    "Condition unknown, cannot be assessed from supplied data",
		Adoptable:         determineAdoptable(models.DefectTypeService, grade, ctx.sector),
		EstimatedCost:     c.comp.CostBand(grade, ctx.opts.CostBands),
		SRMGrading:        c.srmGradingText(models.DefectTypeService, grade),
	}
}

func (c *Classifier) highWaterResult(ctx *evalContext, pct int) models.ClassificationResult {
	grade := 3
	return models.ClassificationResult{
		DefectCode:        "WL",
		DefectDescription: fmt.Sprintf("High water level (%d%%)", pct),
		SeverityGrade:     grade,
		DefectType:        models.DefectTypeService,
		Recommendations: fmt.Sprintf(
			"Water level at %d%% of pipe diameter indicates a possible downstream blockage or restriction. "+
				"Jet from the downstream manhole in accordance with the cleaning manual and resurvey.", pct),
		RiskAssessment:  "Restricted flow, surcharge risk upstream",
		Adoptable:       determineAdoptable(models.DefectTypeService, grade, ctx.sector),
		EstimatedCost:   c.comp.CostBand(grade, ctx.opts.CostBands),
		SRMGrading:      c.srmGradingText(models.DefectTypeService, grade),
		CleaningMethods: c.std.CleaningMethods("WL"),
	}
}

func (c *Classifier) bellyResult(ctx *evalContext, belly BellyResult) models.ClassificationResult {
	grade := 2
	adoptable := models.AdoptableYes
	if belly.AdoptionFail {
		grade = 3
		adoptable = models.AdoptableNo
	}
	result := models.ClassificationResult{
		DefectCode:        "WL",
		DefectDescription: belly.Observation,
		SeverityGrade:     grade,
		DefectType:        models.DefectTypeService,
		Recommendations:   belly.Recommendation,
		RiskAssessment:    "Standing water, sediment accumulation in the depressed length",
		Adoptable:         adoptable,
		EstimatedCost:     c.comp.CostBand(grade, ctx.opts.CostBands),
		SRMGrading:        c.srmGradingText(models.DefectTypeService, grade),
	}
	if belly.AdoptionFail {
		result.AdoptionNotes = fmt.Sprintf(
			"Maximum water level %d%% exceeds the %d%% belly limit of %s.",
			belly.MaxWaterLevel, belly.Threshold, belly.StandardName)
	}
	return result
}

// highestWaterLevel extracts the largest water-level percentage present
// in the text.
func highestWaterLevel(text string) (int, bool) {
	matches := reWaterLevelPct.FindAllStringSubmatch(text, -1)
	highest, found := 0, false
	for _, m := range matches {
		pct, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !found || pct > highest {
			highest, found = pct, true
		}
	}
	return highest, found
}
