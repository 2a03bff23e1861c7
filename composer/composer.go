// Package composer merges classifier output with the repair-book and
// cleaning-manual method lists and the cost-band table to produce the
// final recommendation and estimated-cost fields.
package composer

import (
	"defect-classify-pipeline/models"
	"defect-classify-pipeline/standards"
)

// NoMethodRequired is returned in place of method lists for codes with
// no repair-book or cleaning-manual entry.
const NoMethodRequired = "None required"

// Composition is the composed recommendation surface for one
// classified defect.
type Composition struct {
	Recommendations       string
	EstimatedCost         string
	RecommendationMethods []string
	CleaningMethods       []string
}

// constructionOverrides replaces the generic repair-book text with
// specialized phrasing for specific codes, construction sector only.
var constructionOverrides = map[string]string{
	"OJM": "Reopen joint and reseal. Where rebar is exposed, cut back rebar and apply directional water cutting before resealing.",
	"OJL": "Excavate and remake joint. Cut back exposed rebar before reinstatement.",
	"JDM": "Realign displaced joint. Use directional water cutting to clear intruded material before realignment.",
	"JDL": "Excavate and realign joint. Cut back exposed rebar and verify line and level before backfill.",
	"OBI": "Remove intruding obstacle by rebar cutting procedure, then resurvey to confirm full bore.",
	"DEC": "Remove hard deposits by directional water cutting, mechanical milling where cutting is ineffective.",
}

// Composer resolves recommendations and costs against the injected
// reference data.
type Composer struct {
	std standards.Provider
}

func New(std standards.Provider) *Composer {
	return &Composer{std: std}
}

// Compose produces the recommendation text, cost band and method lists
// for a classified defect. overrides is the per-user cost-band map;
// entries present there win entry-by-entry over the default table.
func (c *Composer) Compose(code, defectType string, grade int, sector string, overrides map[int]string) Composition {
	comp := Composition{
		EstimatedCost:         c.CostBand(grade, overrides),
		RecommendationMethods: c.std.RepairMethods(code),
		CleaningMethods:       c.std.CleaningMethods(code),
	}

	if entry, ok := c.std.DefectCode(code); ok {
		comp.Recommendations = entry.RecommendedAction
	}
	if sector == models.SectorConstruction {
		if override, ok := constructionOverrides[code]; ok {
			comp.Recommendations = override
		}
	}

	if len(comp.RecommendationMethods) == 0 && defectType == models.DefectTypeStructural {
		comp.RecommendationMethods = []string{NoMethodRequired}
	}
	if len(comp.CleaningMethods) == 0 && defectType == models.DefectTypeService {
		comp.CleaningMethods = []string{NoMethodRequired}
	}
	return comp
}

// CostBand resolves the cost band for a grade, user overrides first.
// Grades missing from the override map fall back to the default table,
// never to "£TBC" unless the grade is outside the table entirely.
func (c *Composer) CostBand(grade int, overrides map[int]string) string {
	if band, ok := overrides[grade]; ok && band != "" {
		return band
	}
	return c.std.CostBand(grade)
}
