package standards

import "defect-classify-pipeline/models"

// defaultCostBands is the grade to cost-band table. Per-user override
// bands, when supplied, take precedence entry-by-entry in the composer.
var defaultCostBands = map[int]string{
	0: "£0",
	1: "£0-500",
	2: "£500-2,000",
	3: "£2,000-10,000",
	4: "£10,000-50,000",
	5: "£50,000+",
}

// defaultAdoptionStandards returns the hardcoded per-sector fallback
// used whenever persisted adoption-standard rows are unavailable. The
// belly thresholds here are contractual values and must not drift.
func defaultAdoptionStandards() map[string]models.AdoptionStandard {
	return map[string]models.AdoptionStandard{
		models.SectorConstruction: {
			Sector:         models.SectorConstruction,
			BellyThreshold: 10,
			StandardName:   "Building Regulations Part H / BS EN 1610",
			Authority:      "Local Authority Building Control",
		},
		models.SectorHighways: {
			Sector:         models.SectorHighways,
			BellyThreshold: 15,
			StandardName:   "DMRB CD 535 Drainage Asset Data",
			Authority:      "National Highways",
		},
		models.SectorAdoption: {
			Sector:         models.SectorAdoption,
			BellyThreshold: 20,
			StandardName:   "Sewerage Sector Guidance (Code for Adoption)",
			Authority:      "Water UK",
		},
		models.SectorUtilities: {
			Sector:         models.SectorUtilities,
			BellyThreshold: 25,
			StandardName:   "Water Industry Act Section 104 Agreement",
			Authority:      "Sewerage Undertaker",
		},
		models.SectorDomestic: {
			Sector:         models.SectorDomestic,
			BellyThreshold: 25,
			StandardName:   "BS EN 13508-2 Domestic Drainage Condition",
			Authority:      "Property Owner / Surveyor",
		},
		models.SectorInsurance: {
			Sector:         models.SectorInsurance,
			BellyThreshold: 30,
			StandardName:   "ABI Domestic Drainage Claims Guidance",
			Authority:      "Association of British Insurers",
		},
	}
}
