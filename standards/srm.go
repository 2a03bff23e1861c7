package standards

import "defect-classify-pipeline/models"

type srmKey struct {
	defectType string
	grade      int
}

// srmGrades maps (type, grade) to the SRM interpretation. Grade 0
// always means no action required and adoptable.
var srmGrades = map[srmKey]SRMGradingEntry{
	{models.DefectTypeStructural, 0}: {
		Description:    "No structural defects observed",
		Criteria:       "Pipe in acceptable structural condition",
		ActionRequired: "No action required",
		Adoptable:      true,
	},
	{models.DefectTypeStructural, 1}: {
		Description:    "Minor structural defects",
		Criteria:       "Defects unlikely to deteriorate in the short term",
		ActionRequired: "No immediate action. Re-inspect at next survey cycle.",
		Adoptable:      true,
	},
	{models.DefectTypeStructural, 2}: {
		Description:    "Slight structural defects",
		Criteria:       "Minimal collapse risk but potential for further deterioration",
		ActionRequired: "Medium-term repair consideration, re-inspect within 5 years.",
		Adoptable:      true,
	},
	{models.DefectTypeStructural, 3}: {
		Description:    "Moderate structural defects",
		Criteria:       "Collapse unlikely in near future but deterioration probable",
		ActionRequired: "Repair within a planned maintenance programme.",
		Adoptable:      false,
	},
	{models.DefectTypeStructural, 4}: {
		Description:    "Significant structural defects",
		Criteria:       "Collapse likely in the foreseeable future",
		ActionRequired: "Repair required in the short term.",
		Adoptable:      false,
	},
	{models.DefectTypeStructural, 5}: {
		Description:    "Severe structural defects",
		Criteria:       "Collapsed or collapse imminent",
		ActionRequired: "Immediate repair or replacement required.",
		Adoptable:      false,
	},
	{models.DefectTypeService, 0}: {
		Description:    "No service defects observed",
		Criteria:       "Pipe in acceptable service condition",
		ActionRequired: "No action required",
		Adoptable:      true,
	},
	{models.DefectTypeService, 1}: {
		Description:    "Minor service defects",
		Criteria:       "Negligible impact on hydraulic performance",
		ActionRequired: "No immediate action.",
		Adoptable:      true,
	},
	{models.DefectTypeService, 2}: {
		Description:    "Slight service defects",
		Criteria:       "Minor reduction in hydraulic performance",
		ActionRequired: "Cleanse within routine maintenance.",
		Adoptable:      true,
	},
	{models.DefectTypeService, 3}: {
		Description:    "Moderate service defects",
		Criteria:       "Noticeable reduction in hydraulic capacity",
		ActionRequired: "Cleanse and resurvey in the medium term.",
		Adoptable:      false,
	},
	{models.DefectTypeService, 4}: {
		Description:    "Significant service defects",
		Criteria:       "Serious flow restriction, blockage likely",
		ActionRequired: "Cleanse in the short term and identify cause.",
		Adoptable:      false,
	},
	{models.DefectTypeService, 5}: {
		Description:    "Severe service defects",
		Criteria:       "Blocked or effectively out of service",
		ActionRequired: "Immediate intervention required.",
		Adoptable:      false,
	},
}
